package config

// Redis backs the distributed rate limiter and the catalog response
// cache.  Both degrade to pass-through when Redis is unreachable, so a
// failed connection is reported to the caller instead of aborting.

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection parameters.  Supported variables are
// REDIS_ADDR (host:port), or REDIS_HOST + REDIS_PORT which take
// precedence, REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
}

// NewRedisClient connects and pings Redis with a short timeout.  On
// failure the client is closed and the error returned.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
