package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsCorroborator/internal/ports"
	"NewsCorroborator/internal/worker"
)

// BatchScheduler wires the ticker driver with the evidence batch worker.
type BatchScheduler struct {
	driver ports.Scheduler
	worker *worker.BatchWorker
	logger *slog.Logger
}

// NewBatchScheduler returns a helper to start/stop recurring batch cycles.
func NewBatchScheduler(driver ports.Scheduler, batchWorker *worker.BatchWorker, logger *slog.Logger) *BatchScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchScheduler{driver: driver, worker: batchWorker, logger: logger}
}

// Start registers the worker cycle with the provided scheduler.
func (s *BatchScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.worker == nil {
		return nil
	}

	job := func(time.Time) {
		if _, err := s.worker.RunCycle(ctx); err != nil {
			s.logger.Error("batch cycle failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *BatchScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
