package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/matchday-consensus/internal/performance"
	"github.com/yourusername/matchday-consensus/internal/repository"
)

// MaxReportDays bounds the report period
const MaxReportDays = 365

// PerformanceService reports on settled analyses
type PerformanceService struct {
	repo repository.AnalysisRepository
	now  func() time.Time
}

// NewPerformanceService creates a performance service
func NewPerformanceService(repo repository.AnalysisRepository) *PerformanceService {
	return &PerformanceService{repo: repo, now: time.Now}
}

// Report summarises the analyses created in the last days days
func (s *PerformanceService) Report(ctx context.Context, days int) (*performance.Report, error) {
	if days <= 0 || days > MaxReportDays {
		return nil, fmt.Errorf("report period must be between 1 and %d days, got %d", MaxReportDays, days)
	}

	now := s.now()
	records, err := s.repo.ListSince(ctx, now.AddDate(0, 0, -days), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}

	report := performance.Build(records, days, now)
	return &report, nil
}
