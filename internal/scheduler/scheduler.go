// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/metrics"
)

const minIntervalSeconds = 5

// PendingCounter counts analyses awaiting a final score
type PendingCounter interface {
	CountUnsettled(ctx context.Context) (int, error)
}

// Sweeper evicts expired cache entries
type Sweeper interface {
	DeleteExpired()
	ItemCount() int
}

// Scheduler manages scheduled housekeeping jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// FromConfig creates a scheduler with the configured jobs. A nil sweeper
// skips the cache sweep, which only applies to the in-memory cache.
func FromConfig(cfg config.SchedulerConfig, counter PendingCounter, sweeper Sweeper, logger *logrus.Logger) (*Scheduler, error) {
	s := NewScheduler(logger)
	if counter != nil {
		if err := s.SchedulePendingGauge(cfg.PendingGaugeIntervalSecs, counter); err != nil {
			return nil, err
		}
	}
	if sweeper != nil {
		if err := s.ScheduleCacheSweep(cfg.CacheSweepIntervalSeconds, sweeper); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RefreshPendingGauge updates the pending settlement gauge once
func RefreshPendingGauge(ctx context.Context, counter PendingCounter) (int, error) {
	n, err := counter.CountUnsettled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsettled analyses: %w", err)
	}
	metrics.UpdatePendingSettlements(n)
	return n, nil
}

// SchedulePendingGauge refreshes the pending settlement gauge on an interval
func (s *Scheduler) SchedulePendingGauge(intervalSeconds int, counter PendingCounter) error {
	interval := clampInterval(intervalSeconds)
	return s.every(interval, "pending_gauge", func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval-time.Second)
		defer cancel()

		n, err := RefreshPendingGauge(ctx, counter)
		if err != nil {
			s.logger.WithError(err).Warn("Pending settlement refresh failed")
			return
		}
		s.logger.WithField("pending", n).Debug("Pending settlements refreshed")
	})
}

// ScheduleCacheSweep evicts expired response cache entries on an interval
func (s *Scheduler) ScheduleCacheSweep(intervalSeconds int, sweeper Sweeper) error {
	return s.every(clampInterval(intervalSeconds), "cache_sweep", func() {
		before := sweeper.ItemCount()
		sweeper.DeleteExpired()
		s.logger.WithFields(logrus.Fields{
			"before": before,
			"after":  sweeper.ItemCount(),
		}).Debug("Response cache swept")
	})
}

func (s *Scheduler) every(interval time.Duration, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), job)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"interval": interval.String(),
	}).Info("Scheduled housekeeping job")

	return nil
}

func clampInterval(seconds int) time.Duration {
	if seconds < minIntervalSeconds {
		seconds = minIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for running jobs to finish, up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler jobs did not finish within %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
