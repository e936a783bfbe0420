package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                             // Echo web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics exposition

	"github.com/iliyamo/movie-ticket-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/movie-ticket-booking/internal/middleware" // auth, cache and rate limit middleware
)

// RegisterRoutes registers operational routes that need no session:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler, metricsUser, metricsPassword string) {
	e.GET("/healthz", health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(metricsUser, metricsPassword))
}

// RegisterAuth registers authentication routes.  Token operations live
// under /v1/auth and need no access token; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}
