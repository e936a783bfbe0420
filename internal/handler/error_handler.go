package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string   `json:"error"`
	Code  int      `json:"code,omitempty"`
	Seats []string `json:"seats,omitempty"`
}

// CustomHTTPErrorHandler renders errors as ErrorResponse and logs 5xx.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"
	var seats []string

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case ErrorResponse:
			message, seats = m.Error, m.Seats
		default:
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("server error",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, ErrorResponse{Error: message, Code: code, Seats: seats})
	}
	if werr != nil {
		logger.Error("write error response failed", zap.Error(werr))
	}
}
