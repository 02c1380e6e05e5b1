package usecase

import (
	"context"
	"log/slog"
	"time"

	"historycal/internal/ports"
	"historycal/internal/source"
)

// Scheduler wires the tick driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	sources  []source.Source
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring run.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, sources []source.Source, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, sources: sources, logger: logger}
}

// Start registers the pipeline run with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if s.logger != nil {
			s.logger.Info("timer picked up", "at", trigger)
		}
		s.pipeline.RunAll(ctx, s.sources)
		if s.logger != nil {
			s.logger.Info("waiting for timer to pick up")
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
