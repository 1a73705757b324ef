// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"typeduel-self/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	// 1xxxxx: 通用错误码
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	// 2xxxxx: 认证相关错误码
	xerrors.CodeAuthenticationFailed: {language.Chinese: "认证失败", language.English: "Authentication failed"},
	xerrors.CodeInvalidToken:         {language.Chinese: "无效令牌", language.English: "Invalid token"},
	xerrors.CodeSessionExpired:       {language.Chinese: "会话过期", language.English: "Session expired"},

	// 3xxxxx: 权限相关错误码
	xerrors.CodePermissionDenied: {language.Chinese: "权限不足", language.English: "Permission denied"},

	// 4xxxxx: 用户管理错误码
	xerrors.CodeUserNotFound: {language.Chinese: "用户不存在", language.English: "User not found"},

	// 6xxxxx: 业务逻辑错误码
	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},

	// 7xxxxx: 外部服务错误码
	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},

	// 9xxxxx: 对战业务错误码
	xerrors.CodeBattleNotFound:      {language.Chinese: "对战不存在", language.English: "Battle not found"},
	xerrors.CodeBattleNotJoinable:   {language.Chinese: "对战不可加入", language.English: "Battle cannot be joined"},
	xerrors.CodeBattleAlreadyJoined: {language.Chinese: "对战已有对手", language.English: "Battle already has an opponent"},
	xerrors.CodeBattleSelfJoin:      {language.Chinese: "不能加入自己创建的对战", language.English: "You cannot join your own battle"},
	xerrors.CodeBattleNotActive:     {language.Chinese: "对战未处于进行中状态", language.English: "Battle is not active"},
	xerrors.CodeBattleNotFinished:   {language.Chinese: "对战尚未结束", language.English: "Battle is not finished yet"},
	xerrors.CodeNotParticipant:      {language.Chinese: "您不是该对战的参与者", language.English: "You are not a participant of this battle"},
	xerrors.CodeResultAlreadySaved:  {language.Chinese: "成绩已提交，不能重复提交", language.English: "Result already submitted"},
	xerrors.CodeNoChallengeContent:  {language.Chinese: "没有可用的打字内容", language.English: "No typing content available"},
	xerrors.CodeBattleStateConflict: {language.Chinese: "对战状态冲突，请刷新后重试", language.English: "Battle state conflict, please refresh and retry"},

	xerrors.CodeNoOpponentAvailable: {language.Chinese: "当前没有可匹配的对手，请稍后重试", language.English: "No opponent available right now, please try again later"},

	xerrors.CodeInvitationNotFound:     {language.Chinese: "邀请不存在", language.English: "Invitation not found"},
	xerrors.CodeInvitationExpired:      {language.Chinese: "邀请已过期", language.English: "Invitation has expired"},
	xerrors.CodeInvitationResponded:    {language.Chinese: "邀请已被处理", language.English: "Invitation already responded"},
	xerrors.CodeInvitationNotRecipient: {language.Chinese: "您不是该邀请的接收者", language.English: "You are not the recipient of this invitation"},
	xerrors.CodeSelfInvite:             {language.Chinese: "不能邀请自己对战", language.English: "You cannot invite yourself"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		// 如果指定语言没有翻译，返回中文（默认）
		if msg, ok := messages[language.Chinese]; ok {
			return msg
		}
	}
	// 如果完全没有定义，返回通用错误消息
	if lang == language.English {
		return "Unknown error"
	}
	return "未知错误"
}
