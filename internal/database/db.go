package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
)

// DSN builds the go-sql-driver DSN for cfg.
func DSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + cfg.Port
	mc.DBName = cfg.Name
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// Pool settings
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
