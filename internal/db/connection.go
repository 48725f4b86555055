// Package db provides database connection and management utilities.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/corebank/ledger/internal/config"

	// Import postgres driver for registration with database/sql
	_ "github.com/lib/pq"
)

// Querier is the subset of database operations repositories need. Both
// *DB and *sql.Tx satisfy it, so a repository can be bound to a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the database connection pool
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Connect opens the ledger's connection pool and verifies the database is
// reachable before any sweep or money movement starts.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pool.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("ledger database ready",
		"host", cfg.Host,
		"database", cfg.DBName,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return &DB{
		DB:     pool,
		logger: logger,
	}, nil
}

// Close releases the pool.
func (db *DB) Close() error {
	db.logger.Info("closing ledger database pool")
	return db.DB.Close()
}
