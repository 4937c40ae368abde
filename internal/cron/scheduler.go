package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry pairs a job with the mutex that keeps its runs from overlapping.
type entry struct {
	job     Job
	running sync.Mutex
}

// run executes the job once, unless the previous run is still in flight, in
// which case the tick is skipped (TryLock, no queueing of late ticks).
func (e *entry) run(ctx context.Context, logger *slog.Logger) {
	if !e.running.TryLock() {
		logger.Warn("cron: job still running, skipping tick", "job", e.job.Name())
		return
	}
	defer e.running.Unlock()

	logger.Debug("cron: job started", "job", e.job.Name())
	if err := e.job.Run(ctx); err != nil {
		logger.Error("cron: job failed", "job", e.job.Name(), "error", err)
		return
	}
	logger.Debug("cron: job completed", "job", e.job.Name())
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries []*entry
	names   map[string]struct{}
	logger  *slog.Logger
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		names:  make(map[string]struct{}),
		logger: logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.names[name] = struct{}{}
	s.entries = append(s.entries, &entry{job: j})
	return nil
}

// Start begins executing registered jobs. Returns an error if any job has an
// invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, e := range s.entries {
		_, err := s.cron.AddFunc(e.job.Schedule(), func() { e.run(ctx, s.logger) })
		if err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", e.job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
