package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// MemoryAnalysisRepository keeps analyses in process with the same semantics
// as the postgres implementation. Records are copied on the way in and out.
type MemoryAnalysisRepository struct {
	mu      sync.RWMutex
	records map[int64]*models.AnalysisRecord
	now     func() time.Time
}

// NewMemoryAnalysisRepository creates an empty in-memory repository
func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{
		records: make(map[int64]*models.AnalysisRecord),
		now:     time.Now,
	}
}

// Upsert stores the record, replacing an unsettled record of the same fixture
func (r *MemoryAnalysisRepository) Upsert(ctx context.Context, record *models.AnalysisRecord) error {
	cp, err := clone(record)
	if err != nil {
		return fmt.Errorf("failed to copy analysis: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	cp.CreatedAt = now
	if existing, ok := r.records[record.FixtureID]; ok {
		if existing.IsSettled() {
			return models.ErrAlreadySettled
		}
		cp.CreatedAt = existing.CreatedAt
	}
	cp.UpdatedAt = now
	cp.Settlement = nil
	r.records[record.FixtureID] = cp

	record.CreatedAt = cp.CreatedAt
	record.UpdatedAt = cp.UpdatedAt
	return nil
}

// GetByFixtureID retrieves the analysis of a fixture
func (r *MemoryAnalysisRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[fixtureID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clone(record)
}

// ListUnsettled returns the oldest analyses still waiting for a result
func (r *MemoryAnalysisRepository) ListUnsettled(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AnalysisRecord
	for _, record := range r.records {
		if record.IsSettled() {
			continue
		}
		cp, err := clone(record)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}

	sortByCreated(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListSince returns analyses created at or after since, oldest first
func (r *MemoryAnalysisRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AnalysisRecord
	for _, record := range r.records {
		if record.CreatedAt.Before(since) {
			continue
		}
		cp, err := clone(record)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}

	sortByCreated(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountUnsettled counts analyses without a settlement
func (r *MemoryAnalysisRepository) CountUnsettled(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, record := range r.records {
		if !record.IsSettled() {
			n++
		}
	}
	return n, nil
}

// Settle stores the settlement if the fixture has none yet
func (r *MemoryAnalysisRepository) Settle(ctx context.Context, fixtureID int64, settlement *models.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[fixtureID]
	if !ok {
		return models.ErrNotFound
	}
	if record.IsSettled() {
		return models.ErrAlreadySettled
	}

	cp := *settlement
	cp.Flags = make(map[string]bool, len(settlement.Flags))
	for k, v := range settlement.Flags {
		cp.Flags[k] = v
	}
	record.Settlement = &cp
	record.UpdatedAt = r.now().UTC()
	return nil
}

func clone(record *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	out := &models.AnalysisRecord{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func sortByCreated(records []*models.AnalysisRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].FixtureID < records[j].FixtureID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
