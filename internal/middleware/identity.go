package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// identityKey is the user component of rate limit keys: the decimal
// user id, or "anon" when the request is not authenticated.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
