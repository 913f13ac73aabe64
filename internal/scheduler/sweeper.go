// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/garage/internal/ports/primary"
)

// EmergencySweeper auto-cancels pending emergencies past their response
// deadline on a cron schedule.
type EmergencySweeper struct {
	cronScheduler *cron.Cron
	service       primary.EmergencyService
	schedule      string
	logger        *zap.Logger
	jobID         cron.EntryID

	mu        sync.Mutex
	cancelled int
}

// NewEmergencySweeper creates a sweeper. schedule is a standard cron spec or
// a descriptor such as "@every 1m".
func NewEmergencySweeper(service primary.EmergencyService, schedule string, logger *zap.Logger) *EmergencySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmergencySweeper{
		cronScheduler: cron.New(),
		service:       service,
		schedule:      schedule,
		logger:        logger,
	}
}

// Start schedules the sweep and starts the scheduler. Each run uses ctx.
func (s *EmergencySweeper) Start(ctx context.Context) error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cronScheduler.Start()
	s.logger.Info("emergency sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *EmergencySweeper) Stop() {
	<-s.cronScheduler.Stop().Done()
	s.logger.Info("emergency sweeper stopped", zap.Int("cancelled", s.Cancelled()))
}

// RunOnce performs one sweep and returns the ids it cancelled.
func (s *EmergencySweeper) RunOnce(ctx context.Context) []string {
	ids, err := s.service.SweepExpired(ctx)

	s.mu.Lock()
	s.cancelled += len(ids)
	s.mu.Unlock()

	for _, id := range ids {
		s.logger.Info("emergency auto-cancelled", zap.String("emergency_id", id))
	}
	if err != nil {
		s.logger.Error("emergency sweep incomplete", zap.Error(err))
	}
	return ids
}

// Cancelled returns how many emergencies this sweeper has cancelled.
func (s *EmergencySweeper) Cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
