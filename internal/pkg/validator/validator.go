package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// EchoValidator 把 go-playground/validator 挂到 Echo 的 Validator 接口上
type EchoValidator struct {
	validate *validator.Validate
}

// Validate 校验请求结构体上的 validate tag
func (v *EchoValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// New 创建 Echo 校验器实例
func New() echo.Validator {
	return &EchoValidator{
		validate: validator.New(),
	}
}
