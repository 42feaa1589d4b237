package cron

import (
	"context"
	"errors"
	"time"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/metrics"
)

const defaultInterval = 5 * time.Minute

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	// JobTimeout bounds a single job run. Zero leaves jobs unbounded.
	JobTimeout time.Duration
}

// Service runs every registered job once per interval while holding Lock.
// Jobs run in registration order and one failure does not stop the rest.
type Service struct {
	ServiceParams
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Lock == nil:
		return nil, errors.New("lock required")
	}
	if params.Registry == nil {
		params.Registry = &Registry{}
	}
	if params.Interval <= 0 {
		params.Interval = defaultInterval
	}
	return &Service{ServiceParams: params}, nil
}

// Run executes a cycle immediately, then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.Logger.Info(s.Logger.WithField(ctx, "interval", s.Interval.String()), "cron.started")
	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			s.Logger.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-time.After(s.Interval):
		}
	}
}

// RunOnce executes a single cycle. Failures are logged and counted.
func (s *Service) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	locked, err := s.Lock.Acquire(ctx)
	switch {
	case err != nil:
		s.Metrics.IncCycle(metrics.CycleFailed)
		s.Logger.Error(ctx, "cron.cycle_failed", err)
		return
	case !locked:
		s.Metrics.IncCycle(metrics.CycleSkipped)
		s.Logger.Info(ctx, "cron.cycle_skipped")
		return
	}
	defer func() {
		if err := s.Lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.Logger.Error(ctx, "cron.lock_release_failed", err)
		}
	}()

	s.Metrics.IncCycle(metrics.CycleRan)
	for _, job := range s.Registry.Jobs() {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	name := job.Name()
	jobCtx := s.Logger.WithJob(ctx, name)
	runCtx, cancel := jobContext(jobCtx, s.JobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(runCtx)
	elapsed := time.Since(start)
	s.Metrics.ObserveRun(name, elapsed, err)

	jobCtx = s.Logger.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.Logger.Error(jobCtx, "cron.job_failed", err)
		return
	}
	s.Logger.Info(jobCtx, "cron.job_completed")
}

func jobContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
