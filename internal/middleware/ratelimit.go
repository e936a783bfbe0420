package middleware

import (
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// rateLimitScript refills and takes one token atomically.  The bucket
// is a hash {tokens, ts} refreshed to expire after ttl seconds.  The
// reply is {allowed, remaining, retry_after_ms}.
var rateLimitScript = redis.NewScript(`
local key      = KEYS[1]
local now      = tonumber(ARGV[1])
local cap      = tonumber(ARGV[2])
local step     = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', key, 'tokens'))
local ts     = tonumber(redis.call('HGET', key, 'ts'))
if not tokens or not ts then
  tokens, ts = cap, now
end

local periods = math.floor(math.max(0, now - ts) / interval)
if periods > 0 then
  tokens = math.min(cap, tokens + periods * step)
  ts = ts + periods * interval
end

local ok, wait = 0, 0
if tokens >= 1 then
  ok = 1
  tokens = tokens - 1
else
  wait = math.max(0, interval - (now - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return {ok, tokens, wait}
`)

// NewTokenBucket limits requests with a Redis token bucket.  When Redis
// is unavailable requests pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return newTokenBucket(cfg, rdb, time.Now)
}

func newTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, now func() time.Time) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			args := []interface{}{
				now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := rateLimitScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				logger.Warn("ratelimit: redis error, allowing request", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				logger.Warn("ratelimit: unexpected script result", zap.String("key", key), zap.Any("result", vals))
				return next(c)
			}
			allowed := fmt.Sprint(arr[0]) == "1"
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}

			if !allowed {
				secs := int64(math.Ceil(float64(retryMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.FormatInt(max(secs, 1), 10))
				logger.Debug("ratelimit: blocked", zap.String("key", key), zap.Int64("retry_ms", retryMs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey joins the components named by cfg.KeyStrategy, an
// underscore separated list of ip, user and route.  An empty or
// unrecognised strategy uses all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	for _, comp := range keyComponents(cfg.KeyStrategy) {
		switch comp {
		case "ip":
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			parts = append(parts, "ip", ip)
		case "user":
			parts = append(parts, "user", identityKey(c))
		case "route":
			parts = append(parts, "route", c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}

func keyComponents(strategy string) []string {
	all := []string{"ip", "user", "route"}
	comps := strings.Split(strings.ToLower(strategy), "_")
	for _, comp := range comps {
		if !slices.Contains(all, comp) {
			return all
		}
	}
	return comps
}
