// File: internal/pkg/i18n/middleware.go
package i18n

import (
	"github.com/labstack/echo/v4"

	"golang.org/x/text/language"
)

// Middleware Echo 中间件 - 从请求中提取语言偏好并存储到 context
// 查询参数 ?lang= 优先于 Accept-Language 头部
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := detectLanguage(c)
			ctx := WithLanguage(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func detectLanguage(c echo.Context) language.Tag {
	if langCode := c.QueryParam("lang"); langCode != "" {
		return ParseLanguageCode(langCode)
	}
	return ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
}
