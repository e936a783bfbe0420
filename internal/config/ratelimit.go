package config

import "time"

// RateLimitConfig drives the Redis token bucket.  The seat lock routes
// carry no identity, so the default key strategy mixes ip, user and
// route.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	// keep buckets alive for at least a few refill periods
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
