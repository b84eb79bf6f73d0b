package repository

import (
	"context"
	"time"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// AnalysisRepository defines the interface for analysis record access. There
// is one record per fixture.
type AnalysisRepository interface {
	// Upsert stores the record, replacing any earlier analysis of the same
	// fixture. It returns models.ErrAlreadySettled when the stored record has
	// been settled.
	Upsert(ctx context.Context, record *models.AnalysisRecord) error
	GetByFixtureID(ctx context.Context, fixtureID int64) (*models.AnalysisRecord, error)
	ListUnsettled(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
	// ListSince returns analyses created at or after since, oldest first
	ListSince(ctx context.Context, since time.Time, limit int) ([]*models.AnalysisRecord, error)
	CountUnsettled(ctx context.Context) (int, error)
	// Settle writes the settlement only if none is stored yet. It returns
	// models.ErrNotFound or models.ErrAlreadySettled otherwise.
	Settle(ctx context.Context, fixtureID int64, settlement *models.Settlement) error
}
