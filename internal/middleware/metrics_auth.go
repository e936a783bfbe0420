package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth protects /metrics with HTTP basic auth when both
// user and password are set.  Otherwise the endpoint is open.
func MetricsBasicAuth(user, password string) echo.MiddlewareFunc {
	if user == "" || password == "" {
		return passThrough
	}
	return middleware.BasicAuth(func(u, p string, _ echo.Context) (bool, error) {
		userMatch := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
		return userMatch && passMatch, nil
	})
}
