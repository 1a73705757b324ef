// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按模块或领域对错误码进行分段，便于管理。
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	// 2xxxxx: 认证相关错误码
	CodeAuthenticationFailed ErrorCode = 200001 // 认证失败
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌
	CodeSessionExpired       ErrorCode = 200007 // 会话过期

	// 3xxxxx: 权限相关错误码
	CodePermissionDenied ErrorCode = 300001 // 权限不足

	// 4xxxxx: 用户管理错误码
	CodeUserNotFound ErrorCode = 400001 // 用户不存在

	// 6xxxxx: 业务逻辑错误码
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误

	// 9xxxxx: 对战业务错误码
	// 对战生命周期 (90xxxx)
	CodeBattleNotFound       ErrorCode = 900001 // 对战不存在
	CodeBattleNotJoinable    ErrorCode = 900002 // 对战不可加入
	CodeBattleAlreadyJoined  ErrorCode = 900003 // 对战已有对手
	CodeBattleSelfJoin       ErrorCode = 900004 // 不能加入自己创建的对战
	CodeBattleNotActive      ErrorCode = 900005 // 对战未处于进行中状态
	CodeBattleNotFinished    ErrorCode = 900006 // 对战尚未结束
	CodeNotParticipant       ErrorCode = 900007 // 不是该对战的参与者
	CodeResultAlreadySaved   ErrorCode = 900008 // 成绩已提交，不能重复提交
	CodeNoChallengeContent   ErrorCode = 900009 // 没有可用的打字内容
	CodeBattleStateConflict  ErrorCode = 900010 // 对战状态冲突

	// 匹配 (91xxxx)
	CodeNoOpponentAvailable ErrorCode = 910001 // 当前没有可匹配的对手

	// 邀请 (92xxxx)
	CodeInvitationNotFound     ErrorCode = 920001 // 邀请不存在
	CodeInvitationExpired      ErrorCode = 920002 // 邀请已过期
	CodeInvitationResponded    ErrorCode = 920003 // 邀请已被处理
	CodeInvitationNotRecipient ErrorCode = 920004 // 不是该邀请的接收者
	CodeSelfInvite             ErrorCode = 920005 // 不能邀请自己
)

// -----------------------------------------------------------------------------
// HTTP 状态码常量定义
// -----------------------------------------------------------------------------
const (
	HTTPStatusOK        = 200 // 请求成功
	HTTPStatusCreated   = 201 // 资源已创建
	HTTPStatusNoContent = 204 // 请求成功但无内容返回

	HTTPStatusBadRequest      = 400 // 错误请求
	HTTPStatusUnauthorized    = 401 // 未经授权
	HTTPStatusForbidden       = 403 // 禁止访问
	HTTPStatusNotFound        = 404 // 资源未找到
	HTTPStatusConflict        = 409 // 资源冲突
	HTTPStatusTooManyRequests = 429 // 请求过多

	HTTPStatusInternalServerError = 500 // 内部服务器错误
	HTTPStatusServiceUnavailable  = 503 // 服务不可用
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeAuthenticationFailed: "认证失败",
	CodeInvalidToken:         "无效令牌",
	CodeSessionExpired:       "会话过期",

	CodePermissionDenied: "权限不足",

	CodeUserNotFound: "用户不存在",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",

	// 对战业务错误消息
	CodeBattleNotFound:      "对战不存在",
	CodeBattleNotJoinable:   "对战不可加入",
	CodeBattleAlreadyJoined: "对战已有对手",
	CodeBattleSelfJoin:      "不能加入自己创建的对战",
	CodeBattleNotActive:     "对战未处于进行中状态",
	CodeBattleNotFinished:   "对战尚未结束",
	CodeNotParticipant:      "您不是该对战的参与者",
	CodeResultAlreadySaved:  "成绩已提交，不能重复提交",
	CodeNoChallengeContent:  "没有可用的打字内容",
	CodeBattleStateConflict: "对战状态冲突，请刷新后重试",

	CodeNoOpponentAvailable: "当前没有可匹配的对手，请稍后重试",

	CodeInvitationNotFound:     "邀请不存在",
	CodeInvitationExpired:      "邀请已过期",
	CodeInvitationResponded:    "邀请已被处理",
	CodeInvitationNotRecipient: "您不是该邀请的接收者",
	CodeSelfInvite:             "不能邀请自己对战",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch {
	case code == CodeSuccess:
		return HTTPStatusOK
	case code == CodeAuthenticationFailed || code == CodeInvalidToken || code == CodeSessionExpired:
		return HTTPStatusUnauthorized
	case code == CodePermissionDenied || code == CodeNotParticipant || code == CodeInvitationNotRecipient:
		return HTTPStatusForbidden
	case code == CodeResourceNotFound || code == CodeUserNotFound ||
		code == CodeBattleNotFound || code == CodeInvitationNotFound:
		return HTTPStatusNotFound
	case code == CodeDuplicateResource:
		return HTTPStatusConflict
	case code == CodeInvalidParams || code == CodeInvalidRequest:
		return HTTPStatusBadRequest
	case code == CodeRateLimitExceeded:
		return HTTPStatusTooManyRequests
	case code >= 900000 && code < 910000:
		// 对战状态类冲突：重新拉取状态后可重试
		return HTTPStatusConflict
	case code == CodeNoOpponentAvailable || code == CodeNoChallengeContent:
		return HTTPStatusServiceUnavailable
	case code >= 920000 && code < 930000:
		return HTTPStatusConflict
	case code >= 600000 && code < 700000:
		return HTTPStatusBadRequest
	case code >= 700000 && code < 800000:
		return HTTPStatusServiceUnavailable
	default:
		return HTTPStatusInternalServerError
	}
}

// 辅助函数
// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 400000 && code < 500000:
		return "user"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "external"
	case code >= 900000 && code < 1000000:
		return "battle"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code >= 100001 && code <= 100003: // 参数错误等
		return LevelWarn
	case code >= 900000: // 对战业务冲突多为客户端状态陈旧
		return LevelWarn
	case code >= 700001 && code < 800000: // 外部服务错误
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		CodeInternalError:        true,
		CodeExternalServiceError: true,
		CodeDatabaseError:        true,
		CodeCacheError:           true,
		CodeMessageQueueError:    true,
		CodeRateLimitExceeded:    true,
		CodeNoOpponentAvailable:  true,
		CodeNoChallengeContent:   true,
		CodeBattleStateConflict:  true,
	}
	return retryableCodes[code]
}
