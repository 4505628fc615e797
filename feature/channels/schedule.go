package channels

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler periodically syncs every active channel.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler creates a scheduler. A zero interval disables it.
func NewScheduler(service *Service, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{service: service, interval: interval, logger: logger}
}

// Enabled reports whether a sync interval is configured.
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start registers the periodic job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		runs, err := s.service.SyncActive(ctx)
		if err != nil {
			s.logger.Error("Scheduled sync failed", zap.Error(err))
			return
		}
		s.logger.Info("Scheduled sync finished", zap.Int("runs", len(runs)))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule channel sync: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("Channel sync scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
