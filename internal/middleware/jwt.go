package middleware // reusable HTTP middleware for the echo server

import (
	"net/http" // HTTP status codes for error responses
	"strings"  // bearer prefix handling

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/movie-ticket-booking/internal/utils" // access token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's identity in the request context.  The provided secret
// must match the one used when issuing tokens.  Handlers read the identity
// with UserID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer <jwt>".  The scheme is matched
			// case-insensitively.
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			// Signature, algorithm and expiry are checked by the parser.
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
