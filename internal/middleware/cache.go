package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheScope is the first segment of the route ("movies" for
// "/movies/:id").  Keys are grouped by scope so writes can drop them.
func cacheScope(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

// cacheKeyFrom builds a stable key honoring prefix and strategy:
// <prefix>:<scope>:<sha1 of method/route/query parts>.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	route := c.Path()
	query := r.URL.RawQuery

	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", route}
	case "method_route":
		parts = []string{"method", r.Method, "route", route}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", route, "q", query}
	default: // "route_query"
		// the concrete path keeps /movies/1 and /movies/2 apart
		parts = []string{"route", r.URL.Path, "q", query}
	}

	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%s:%x", cfg.Prefix, cacheScope(route), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// NewRedisCache serves cached 200 responses for the configured methods
// and stores misses.  Headers are stored with the body so clients see
// identical responses on a hit.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, "X-Cache") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			} else if err != redis.Nil {
				logger.Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
			}

			// miss: capture the response
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				logger.Warn("cache: redis set failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// InvalidateCache drops every cached response of the route's scope
// after a successful write (status < 400).  Failures are logged only;
// entries still expire with their TTL.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}
			pattern := fmt.Sprintf("%s:%s:*", cfg.Prefix, cacheScope(c.Path()))
			if derr := purge(context.WithoutCancel(c.Request().Context()), rdb, pattern); derr != nil {
				logger.Warn("cache: invalidate failed", zap.String("pattern", pattern), zap.Error(derr))
			}
			return nil
		}
	}
}

func purge(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
