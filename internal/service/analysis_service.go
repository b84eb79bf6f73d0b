// Package service ties the orchestrator, persistence and the event stream
// together into the operations exposed by the API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/orchestrator"
	"github.com/yourusername/matchday-consensus/internal/repository"
	"github.com/yourusername/matchday-consensus/internal/stream"
	"github.com/yourusername/matchday-consensus/internal/tracing"
)

// Analyzer runs the analysis pipeline for one fixture
type Analyzer interface {
	Analyze(ctx context.Context, match *models.MatchContext) *orchestrator.Result
}

// Publisher receives analysis events
type Publisher interface {
	Publish(evt stream.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(stream.Event) {}

// AnalysisService runs analyses and stores one record per fixture
type AnalysisService struct {
	analyzer  Analyzer
	repo      repository.AnalysisRepository
	publisher Publisher
	validate  *validator.Validate
	logger    *logrus.Logger
	now       func() time.Time
}

// NewAnalysisService creates an analysis service. A nil publisher disables
// event publishing.
func NewAnalysisService(analyzer Analyzer, repo repository.AnalysisRepository, publisher Publisher, logger *logrus.Logger) *AnalysisService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &AnalysisService{
		analyzer:  analyzer,
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateMatch checks the required match fields
func (s *AnalysisService) ValidateMatch(match *models.MatchContext) error {
	if match == nil {
		return fmt.Errorf("%w: match is nil", models.ErrInvalidMatch)
	}
	if err := s.validate.Struct(match); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidMatch, err)
	}
	return nil
}

// Analyze validates the match, runs the pipeline, stores the record and
// publishes it. Persistence failures are reported in the result errors; only
// invalid input and already settled fixtures return an error.
func (s *AnalysisService) Analyze(ctx context.Context, match *models.MatchContext) (*orchestrator.Result, error) {
	if err := s.ValidateMatch(match); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByFixtureID(ctx, match.FixtureID)
	switch {
	case err == nil && existing.IsSettled():
		return nil, fmt.Errorf("%w: fixture %d", models.ErrAlreadySettled, match.FixtureID)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		s.logger.WithError(err).WithField("fixture_id", match.FixtureID).Warn("Failed to look up previous analysis")
	}

	var result *orchestrator.Result
	_ = tracing.Capture(ctx, "analysis.pipeline", func(ctx context.Context) error {
		tracing.AddAnnotation(ctx, "fixture_id", match.FixtureID)
		result = s.analyzer.Analyze(ctx, match)
		return nil
	})
	record := NewRecord(match, result, s.now())

	err = tracing.Capture(ctx, "analysis.persist", func(ctx context.Context) error {
		return s.repo.Upsert(ctx, record)
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadySettled) {
			return nil, err
		}
		s.logger.WithError(err).WithField("fixture_id", match.FixtureID).Error("Failed to persist analysis")
		result.Errors = append(result.Errors, fmt.Sprintf("persistence: %v", err))
	} else {
		s.logger.WithFields(logrus.Fields{
			"fixture_id":  match.FixtureID,
			"analysis_id": record.ID.String(),
		}).Debug("Analysis persisted")
	}

	s.publisher.Publish(stream.Event{
		Type:      stream.EventAnalysisCompleted,
		FixtureID: match.FixtureID,
		Payload:   result,
	})

	return result, nil
}

// Get returns the stored analysis of a fixture
func (s *AnalysisService) Get(ctx context.Context, fixtureID int64) (*models.AnalysisRecord, error) {
	return s.repo.GetByFixtureID(ctx, fixtureID)
}

// NewRecord builds the persisted form of an analysis result
func NewRecord(match *models.MatchContext, result *orchestrator.Result, now time.Time) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:          result.AnalysisID,
		FixtureID:   match.FixtureID,
		Match:       *match,
		Agents:      result.Results.Agents,
		Consensus:   result.Results.Consensus,
		Arbitration: result.Results.Arbitration,
		Markets:     result.Results.Markets,
		Errors:      append([]string(nil), result.Errors...),
		TimingMs:    result.TimingMs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
