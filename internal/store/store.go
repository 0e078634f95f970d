// Package store implements Postgres persistence for the ASIS research
// platform: users, subscriptions, and the research query log.
//
// The schema is applied on startup with CREATE TABLE IF NOT EXISTS so
// the server can boot against an empty database without a separate
// migration step.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a query matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that already
// has an account.
var ErrDuplicateEmail = errors.New("user already exists")

// Store wraps a pgx connection pool with the platform's queries.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres, verifies the connection, and applies the
// schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logrus.Info("Connected to database")
	return s, nil
}

// migrate applies the schema. Idempotent.
func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR UNIQUE NOT NULL,
			password_hash VARCHAR NOT NULL,
			institution VARCHAR,
			role VARCHAR DEFAULT 'researcher',
			tier VARCHAR DEFAULT 'academic',
			subscription_status VARCHAR DEFAULT 'active',
			is_academic BOOLEAN DEFAULT FALSE,
			discount_percentage FLOAT DEFAULT 0,
			created_date TIMESTAMP DEFAULT NOW(),
			last_active TIMESTAMP DEFAULT NOW(),
			monthly_usage JSONB DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			subscription_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID REFERENCES users(user_id),
			tier VARCHAR NOT NULL,
			status VARCHAR DEFAULT 'active',
			billing_period VARCHAR DEFAULT 'monthly',
			amount_cents INTEGER NOT NULL DEFAULT 0,
			current_period_start TIMESTAMP,
			current_period_end TIMESTAMP,
			created_date TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS research_queries (
			query_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID REFERENCES users(user_id),
			query_text TEXT NOT NULL,
			databases VARCHAR[],
			results_count INTEGER,
			processing_time_ms INTEGER,
			created_date TIMESTAMP DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
