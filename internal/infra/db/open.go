package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	envcfg "agrisense/pkg/config"
)

// ErrMissingDSN is returned by Open when no connection string is configured.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// ConnectionConfigFromEnv overlays DB_* environment variables on the defaults.
// Non-positive or unparsable values keep the default.
func ConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	if v := envcfg.GetEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns); v > 0 {
		cfg.MaxOpenConns = v
	}
	if v := envcfg.GetEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns); v > 0 {
		cfg.MaxIdleConns = v
	}
	if v := envcfg.GetEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime); v > 0 {
		cfg.ConnMaxLifetime = v
	}
	if v := envcfg.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime); v > 0 {
		cfg.ConnMaxIdleTime = v
	}
	// アイドル接続数は最大接続数を超えられない
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}
	return cfg
}

// Open creates the pgx-backed pool for dsn, applies cfg and verifies the
// connection with a bounded ping.
func Open(ctx context.Context, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established successfully")
	return db, nil
}
