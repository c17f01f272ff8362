package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"ymurakami/suumowatcher/logger"
)

// Scheduler wraps robfig/cron and re-runs the watcher on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	watcher *Watcher
	spec    string // cron spec, e.g. "@every 6h"
	log     *logger.Logger
}

// NewScheduler creates a scheduler that fires every intervalHours hours.
func NewScheduler(watcher *Watcher, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		watcher: watcher,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
		log:     logger.ForComponent("scheduler"),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so the first notifications do not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.watcher.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("Scheduler started")

	go s.watcher.Run(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("Scheduler stopped")
}
