package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/matchday-consensus/internal/database"
	"github.com/yourusername/matchday-consensus/internal/models"
)

const analysisColumns = `id, fixture_id, match, agents, consensus, arbitration, markets,
		       errors, timing_ms, settlement, created_at, updated_at`

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL
type PostgresAnalysisRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRepository creates a new analysis repository
func NewPostgresAnalysisRepository(db *database.DB) AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Upsert inserts the record or replaces the unsettled record of the same fixture
func (r *PostgresAnalysisRepository) Upsert(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analyses (id, fixture_id, match, agents, consensus, arbitration, markets,
		                      errors, timing_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (fixture_id) DO UPDATE SET
			id = EXCLUDED.id,
			match = EXCLUDED.match,
			agents = EXCLUDED.agents,
			consensus = EXCLUDED.consensus,
			arbitration = EXCLUDED.arbitration,
			markets = EXCLUDED.markets,
			errors = EXCLUDED.errors,
			timing_ms = EXCLUDED.timing_ms,
			updated_at = NOW()
		WHERE analyses.settled_at IS NULL
		RETURNING created_at, updated_at
	`

	args, err := encodeJSON(record.Match, record.Agents, record.Consensus, record.Arbitration,
		record.Markets, nonNil(record.Errors), record.TimingMs)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	err = r.db.GetPool().QueryRow(ctx, query,
		append([]any{record.ID, record.FixtureID}, args...)...,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrAlreadySettled
	}
	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	return nil
}

// GetByFixtureID retrieves the analysis of a fixture
func (r *PostgresAnalysisRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (*models.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE fixture_id = $1`

	record, err := scanAnalysis(r.db.GetPool().QueryRow(ctx, query, fixtureID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return record, nil
}

// ListUnsettled returns the oldest analyses still waiting for a result
func (r *PostgresAnalysisRepository) ListUnsettled(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE settled_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	return r.list(ctx, "unsettled", query, limit)
}

// ListSince returns analyses created at or after since, oldest first. A
// limit of zero or less returns every match.
func (r *PostgresAnalysisRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE created_at >= $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	var lim any
	if limit > 0 {
		lim = limit
	}
	return r.list(ctx, "recent", query, since, lim)
}

func (r *PostgresAnalysisRepository) list(ctx context.Context, what, query string, args ...any) ([]*models.AnalysisRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s analyses: %w", what, err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountUnsettled counts analyses without a settlement
func (r *PostgresAnalysisRepository) CountUnsettled(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetPool().QueryRow(ctx, `SELECT COUNT(*) FROM analyses WHERE settled_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsettled analyses: %w", err)
	}
	return n, nil
}

// Settle stores the settlement if the fixture has none yet
func (r *PostgresAnalysisRepository) Settle(ctx context.Context, fixtureID int64, settlement *models.Settlement) error {
	payload, err := json.Marshal(settlement)
	if err != nil {
		return fmt.Errorf("failed to encode settlement: %w", err)
	}

	query := `
		UPDATE analyses
		SET settlement = $2, settled_at = $3, updated_at = NOW()
		WHERE fixture_id = $1 AND settled_at IS NULL
	`
	tag, err := r.db.GetPool().Exec(ctx, query, fixtureID, payload, settlement.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to settle analysis: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var settledAt *time.Time
	err = r.db.GetPool().QueryRow(ctx, `SELECT settled_at FROM analyses WHERE fixture_id = $1`, fixtureID).Scan(&settledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check settlement: %w", err)
	}
	return models.ErrAlreadySettled
}

func scanAnalysis(row pgx.Row) (*models.AnalysisRecord, error) {
	record := &models.AnalysisRecord{}
	var match, agents, consensus, arbitration, markets, errs, timing, settlement []byte

	err := row.Scan(
		&record.ID, &record.FixtureID, &match, &agents, &consensus, &arbitration, &markets,
		&errs, &timing, &settlement, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		data []byte
		dest any
	}{
		{match, &record.Match},
		{agents, &record.Agents},
		{consensus, &record.Consensus},
		{arbitration, &record.Arbitration},
		{markets, &record.Markets},
		{errs, &record.Errors},
		{timing, &record.TimingMs},
		{settlement, &record.Settlement},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("failed to decode column: %w", err)
		}
	}

	return record, nil
}

func encodeJSON(values ...any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
