package database

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id           UUID PRIMARY KEY,
	fixture_id   BIGINT NOT NULL UNIQUE,
	match        JSONB NOT NULL,
	agents       JSONB NOT NULL,
	consensus    JSONB NOT NULL,
	arbitration  JSONB NOT NULL,
	markets      JSONB,
	errors       JSONB NOT NULL DEFAULT '[]'::jsonb,
	timing_ms    JSONB NOT NULL,
	settlement   JSONB,
	settled_at   TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analyses_unsettled
	ON analyses (created_at)
	WHERE settled_at IS NULL;
`

// Initialize creates a database connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the analyses table and its indexes when missing
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
