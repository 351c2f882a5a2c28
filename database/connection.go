// Package database owns the pgx connection pool and the embedded schema
// migrations.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared pgx pool handed to the repository layer
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool against databaseURL and verifies the database
// responds before handing it out.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases all pooled connections
func (db *DB) Close() {
	db.Pool.Close()
}
