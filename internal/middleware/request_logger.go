package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// RequestLogger writes one structured log line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)

			status := statusOf(c, err)
			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if id, ok := UserID(c); ok {
				fields = append(fields, zap.Uint64("user_id", id))
			}

			switch {
			case status >= 500:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				logger.Error("server error", fields...)
			case status >= 400:
				logger.Warn("client error", fields...)
			default:
				logger.Info("request completed", fields...)
			}
			return err
		}
	}
}
