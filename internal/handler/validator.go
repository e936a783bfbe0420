package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts validator/v10 to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate checks the struct tags of i and reports failures as 400.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// NewTestEcho returns an echo instance wired like the server, for tests.
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = CustomHTTPErrorHandler
	return e
}
