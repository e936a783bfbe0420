package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// retryAfterSeconds is sent with 409 responses to transient conflicts.
const retryAfterSeconds = "1"

// toHTTPError translates service and repository errors into HTTP
// errors.  Unknown errors become 500 with the cause kept internal.
func toHTTPError(c echo.Context, err error) error {
	var conflict *service.SeatConflictError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Error: clientMessage(conflict.Kind),
			Code:  http.StatusBadRequest,
			Seats: conflict.Seats,
		})
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, clientMessage(err))
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, repository.ErrTransientConflict):
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
		return echo.NewHTTPError(http.StatusConflict, "resource busy, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

// clientMessage drops the trailing error kind so clients see only the
// detail, e.g. "show not found".
func clientMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{service.ErrNotFound, service.ErrInvalidState, service.ErrConflict, service.ErrInvalidInput} {
		msg = strings.TrimSuffix(msg, ": "+kind.Error())
	}
	return msg
}
