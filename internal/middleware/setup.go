package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-ticket-booking/internal/pkg/metrics"
)

// SetupMiddleware installs the global middleware chain: request id,
// metrics, structured logging, panic recovery, CORS and a body limit.
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if m != nil {
		e.Use(PrometheusMiddleware(m))
	}
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("1M"))
}
