package config // package config loads application configuration from environment variables

import (
	"errors"  // errors.Join aggregates every missing variable into one report
	"fmt"     // fmt formats validation errors
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // durations for lock TTLs and timeouts

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  It is loaded once at
// startup and handed to constructors explicitly; no package reads the
// environment on its own after Load returns.
type Config struct {
	Env  string // application environment (e.g. "dev", "production")
	Port string // HTTP port to listen on

	DB DBConfig // MySQL connection and transaction settings

	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	SeatLockTTL time.Duration // lifetime of a seat lock batch

	AMQP      AMQPConfig      // RabbitMQ settings for booking events
	Redis     RedisConfig     // Redis connection used by cache and rate limiter
	Cache     CacheConfig     // response cache for catalog reads
	RateLimit RateLimitConfig // token bucket limiter

	MetricsUser     string        // optional basic-auth user for /metrics
	MetricsPassword string        // optional basic-auth password for /metrics
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// DBConfig groups database connectivity and the transaction policy used
// by the seat locking and booking code paths.
type DBConfig struct {
	User            string
	Pass            string // optional
	Host            string
	Port            string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LockWaitTimeout int  // innodb_lock_wait_timeout in seconds, applied per transaction
	TxMaxAttempts   int  // attempts for a transaction that hits a lock timeout or deadlock
	MigrateOnStart  bool // apply embedded migrations at startup
}

// AMQPConfig configures the booking events publisher and consumer.  An
// empty URL disables messaging.
type AMQPConfig struct {
	URL   string
	Queue string
}

// Load reads configuration values from the environment (after loading
// .env if one exists) and returns a Config.  Every missing required
// variable is reported in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	var missing []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}

	cfg := Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),
		DB: DBConfig{
			User:            must("DB_USER"),
			Pass:            os.Getenv("DB_PASS"), // empty allowed
			Host:            must("DB_HOST"),
			Port:            must("DB_PORT"),
			Name:            must("DB_NAME"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			LockWaitTimeout: envInt("LOCK_WAIT_TIMEOUT", 5),
			TxMaxAttempts:   envInt("TX_MAX_ATTEMPTS", 3),
			MigrateOnStart:  envBool("MIGRATE_ON_START", true),
		},
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		SeatLockTTL:    envDur("SEAT_LOCK_TTL", 10*time.Minute),
		AMQP: AMQPConfig{
			URL:   os.Getenv("AMQP_URL"),
			Queue: envStr("BOOKING_EVENTS_QUEUE", "booking.events"),
		},
		Redis:           LoadRedisConfig(),
		Cache:           LoadCacheConfig(),
		RateLimit:       LoadRateLimitConfig(),
		MetricsUser:     os.Getenv("METRICS_USER"),
		MetricsPassword: os.Getenv("METRICS_PASSWORD"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if len(missing) > 0 {
		return Config{}, errors.Join(missing...)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects values that would break the transaction policy or
// token issuing at runtime.
func (c Config) validate() error {
	if c.SeatLockTTL <= 0 {
		return fmt.Errorf("SEAT_LOCK_TTL must be positive, got %s", c.SeatLockTTL)
	}
	if c.DB.LockWaitTimeout < 1 {
		return fmt.Errorf("LOCK_WAIT_TIMEOUT must be at least 1 second, got %d", c.DB.LockWaitTimeout)
	}
	if c.DB.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1, got %d", c.DB.TxMaxAttempts)
	}
	if c.AccessTTLMin < 1 || c.RefreshTTLDays < 1 {
		return errors.New("token TTLs must be positive")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid APP_PORT %q", c.Port)
	}
	return nil
}
