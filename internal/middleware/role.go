package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the role set by
// JWTAuth is one of roles (compared case-insensitively).  It must run
// after JWTAuth; anonymous requests are rejected with 403 as well.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToUpper(r)] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := allowed[strings.ToUpper(Role(c))]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
