package handler // handler defines http handlers

import (
	"net/http" // status codes
	"strconv"  // path and query parsing

	"github.com/labstack/echo/v4" // request context

	"github.com/iliyamo/movie-ticket-booking/internal/middleware" // identity set by JWTAuth
)

// getUserID returns the authenticated user id or a 401 error.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// pagination reads skip and limit.  Missing values are left at zero and
// clamped by the services.
func pagination(c echo.Context) (skip, limit int, err error) {
	if v := c.QueryParam("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid skip")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}
	return skip, limit, nil
}

// bindAndValidate decodes the body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

type messageResponse struct {
	Message string `json:"message"`
}
