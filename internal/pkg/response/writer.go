// File: internal/pkg/response/writer.go
package response

import (
	"context"
	"errors"
	"net/http"
	"time"

	"typeduel-self/internal/pkg/ctxkey"
	"typeduel-self/internal/pkg/i18n"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/metrics"
	"typeduel-self/internal/pkg/trace"
	"typeduel-self/internal/pkg/xerrors"
)

// Writer 统一的 HTTP 响应写入接口
// Handler 不直接操作 http.ResponseWriter，而是通过该接口输出，
// 保证错误码、本地化消息、trace_id 和指标记录的一致性
type Writer interface {
	// WriteSuccess 写入成功响应（HTTP 200 + 业务成功码）
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error

	// WriteError 写入错误响应，HTTP 状态码由业务错误码映射得到
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error

	// WriteJSON 直接写入 JSON 响应（跳过 ResponseResult 包装）
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
//
// environment 为 "production" 时，错误详情不会透出给客户端
func NewResponseHandler(logger log.Logger, environment string) Writer {
	return &ResponseHandler{
		logger:      logger,
		environment: environment,
	}
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &ResponseResult[any]{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      &data,
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}

	metrics.DefaultErrorMetrics.RecordHTTPResponse(http.StatusOK, h.httpMethod(ctx), "")

	JSON(w, http.StatusOK, resp)
	return nil
}

// WriteError 写入错误响应
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	start := time.Now()

	// 统一转换为 AppError；未知错误归类为内部错误
	var appErr *xerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = xerrors.NewWithError(xerrors.CodeInternalError, "内部服务错误", err)
	}

	lang := i18n.GetLanguage(ctx)
	statusCode := xerrors.GetHTTPStatus(appErr.Code)

	resp := &ResponseResult[EmptyData]{
		Code:      appErr.Code.ToInt(),
		Message:   i18n.GetErrorMessage(appErr.Code, lang),
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}

	// 生产环境不透出内部错误详情
	if h.environment != "production" && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}

	// 记录错误日志和指标
	h.logger.ErrorContext(ctx, "请求处理失败",
		log.Any("app_error", appErr),
		log.Int("status", statusCode),
	)
	metrics.DefaultErrorMetrics.RecordError(appErr, statusCode, h.httpMethod(ctx), "", time.Since(start).Seconds())

	JSON(w, statusCode, resp)
	return nil
}

// WriteJSON 直接写入 JSON 响应
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	metrics.DefaultErrorMetrics.RecordHTTPResponse(statusCode, h.httpMethod(ctx), "")

	resp := &ResponseResult[any]{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      &data,
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}
	JSON(w, statusCode, resp)
	return nil
}

func (h *ResponseHandler) httpMethod(ctx context.Context) string {
	return ctxkey.GetString(ctx, ctxkey.HTTPMethod)
}
