package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/logger"
	"github.com/yourusername/matchday-consensus/internal/metrics"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/repository"
	"github.com/yourusername/matchday-consensus/internal/settlement"
	"github.com/yourusername/matchday-consensus/internal/stream"
)

// SettlementService records final scores against stored analyses. Each
// fixture is settled exactly once.
type SettlementService struct {
	repo      repository.AnalysisRepository
	publisher Publisher
	audit     *logger.AuditLogger
	logger    *logrus.Logger
	now       func() time.Time
}

// NewSettlementService creates a settlement service
func NewSettlementService(repo repository.AnalysisRepository, publisher Publisher, log *logrus.Logger) *SettlementService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &SettlementService{
		repo:      repo,
		publisher: publisher,
		audit:     logger.NewAuditLogger(log),
		logger:    log,
		now:       time.Now,
	}
}

// Settle grades the stored analysis against the final score. Settling again
// with the same score returns the stored settlement unchanged; a different
// score returns models.ErrAlreadySettled.
func (s *SettlementService) Settle(ctx context.Context, fixtureID int64, score models.FinalScore) (*models.Settlement, error) {
	if err := score.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByFixtureID(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.RecordSettlement("not_found")
		} else {
			metrics.RecordSettlement("error")
		}
		return nil, err
	}

	if record.IsSettled() {
		return s.resettle(fixtureID, record.Settlement, score)
	}

	result := settlement.Evaluate(record, score, s.now().UTC())

	if err := s.repo.Settle(ctx, fixtureID, &result); err != nil {
		if !errors.Is(err, models.ErrAlreadySettled) {
			metrics.RecordSettlement("error")
			return nil, fmt.Errorf("failed to store settlement: %w", err)
		}
		// Lost a race with a concurrent settle
		stored, getErr := s.repo.GetByFixtureID(ctx, fixtureID)
		if getErr != nil || !stored.IsSettled() {
			metrics.RecordSettlement("conflict")
			return nil, err
		}
		return s.resettle(fixtureID, stored.Settlement, score)
	}

	metrics.RecordSettlement("settled")
	s.audit.LogSettlement(fixtureID, score.String(), result.Graded, result.Correct, result.SettledAt)
	s.publisher.Publish(stream.Event{
		Type:      stream.EventAnalysisSettled,
		FixtureID: fixtureID,
		Payload:   result,
	})

	return &result, nil
}

func (s *SettlementService) resettle(fixtureID int64, stored *models.Settlement, score models.FinalScore) (*models.Settlement, error) {
	if stored.Score.Equal(score) {
		metrics.RecordSettlement("duplicate")
		s.logger.WithField("fixture_id", fixtureID).Debug("Fixture already settled with the same score")
		return stored, nil
	}

	metrics.RecordSettlement("conflict")
	s.audit.LogSettlementConflict(fixtureID, stored.Score.String(), score.String())
	return nil, fmt.Errorf("%w: fixture %d settled as %s", models.ErrAlreadySettled, fixtureID, stored.Score)
}
