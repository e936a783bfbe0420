package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/pkg/metrics"
)

// PrometheusMiddleware records request counts and latency per route.
func PrometheusMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := statusOf(c, err)
			// route template keeps label cardinality bounded
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method

			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf is the status the error handler will write for err.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
