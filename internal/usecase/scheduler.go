package usecase

import (
	"context"
	"log/slog"
	"time"

	"mediawatch/internal/ports"
)

// Scheduler wires the cron-like driver with the aggregation use case.
type Scheduler struct {
	driver  ports.Scheduler
	crawler *Crawler
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring run.
func NewScheduler(driver ports.Scheduler, crawler *Crawler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, crawler: crawler, logger: logger}
}

// Start registers the aggregation run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.crawler == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled aggregation run", "trigger", trigger.UTC())
		if _, err := s.crawler.Run(ctx); err != nil {
			s.logger.Error("scheduled aggregation run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
