package scheduler

import (
	"context"
	"fmt"
	"time"

	"MarketLens/internal/recorder"
	"MarketLens/internal/session"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler runs periodic housekeeping: expiring idle sessions and
// pruning old run history.
type Scheduler struct {
	Cron      *cron.Cron
	Sessions  session.Store
	Recorder  recorder.Recorder
	Retention time.Duration
	Ctx       context.Context

	now    func() time.Time
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler. A zero retention disables pruning.
func NewScheduler(ctx context.Context, sessions session.Store, rec recorder.Recorder, retention time.Duration) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Sessions:  sessions,
		Recorder:  rec,
		Retention: retention,
		Ctx:       ctx,
		now:       time.Now,
		logger:    log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the session sweep and history prune tasks.
func (s *Scheduler) RegisterAll(sweepCron, pruneCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepSessions); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	if s.Retention > 0 {
		if _, err := s.Cron.AddFunc(pruneCron, s.pruneRuns); err != nil {
			return fmt.Errorf("register history prune: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) sweepSessions() {
	if s.Sessions == nil {
		return
	}
	n, err := s.Sessions.Sweep(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep sessions")
		return
	}
	if n > 0 {
		s.logger.Info().Int("removed", n).Msg("expired sessions removed")
	}
}

func (s *Scheduler) pruneRuns() {
	if s.Recorder == nil {
		return
	}
	cutoff := s.now().Add(-s.Retention)
	n, err := s.Recorder.Prune(cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("prune run history")
		return
	}
	s.logger.Info().Int64("removed", n).Time("before", cutoff).Msg("run history pruned")
}
