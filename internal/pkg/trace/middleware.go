// File: internal/pkg/trace/middleware.go
package trace

import (
	"github.com/labstack/echo/v4"
)

// Middleware Echo 中间件：注入 trace ID 到请求 context
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 从请求头提取或生成 trace ID
			traceID := ExtractFromHeader(c.Request().Header)

			// 注入到 request context
			ctx := WithTraceID(c.Request().Context(), traceID)
			c.SetRequest(c.Request().WithContext(ctx))

			// 写入响应头，便于客户端关联排查
			c.Response().Header().Set("X-Trace-Id", traceID)

			return next(c)
		}
	}
}
