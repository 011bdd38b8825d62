// Package scheduler implements background job scheduling for the school
// portal: the weekly digest dispatch and other periodic maintenance.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ═══════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ═══════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ═══════════════════════════════════════════════════════════════════════════

// Scheduler runs registered jobs on cron schedules. Schedules are
// interpreted in school-local time, so "every Sunday at 18:00" means 18:00
// in Seoul regardless of where the process runs.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger

	mu       sync.RWMutex
	lastRuns map[string]JobResult
	running  bool

	jobTimeout time.Duration
}

// Config contains scheduler configuration.
type Config struct {
	// Location for schedule calculations. Defaults to school-local time.
	Location *time.Location

	// JobTimeout bounds one job execution.
	JobTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Location:   timeutil.SeoulTZ,
		JobTimeout: 5 * time.Minute,
	}
}

// New creates a scheduler with the given configuration.
func New(cfg Config, log *logger.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = timeutil.SeoulTZ
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if log == nil {
		log = logger.Default()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(cfg.Location)),
		log:        log.With(logger.Component("scheduler")),
		lastRuns:   make(map[string]JobResult),
		jobTimeout: cfg.JobTimeout,
	}
}

// Register schedules a job with a standard 5-field cron expression
// ("0 18 * * 0" - Sundays at 18:00).
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for job %s: %w", spec, job.Name(), err)
	}

	s.log.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("spec", spec),
		logger.String("description", job.Description()))
	return nil
}

// runJob executes one job with timeout and panic recovery, and records the
// result.
func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	result := JobResult{JobName: job.Name(), StartedAt: time.Now()}

	defer func() {
		if p := recover(); p != nil {
			result.Error = fmt.Errorf("panic: %v", p)
		}
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
		result.Success = result.Error == nil

		s.mu.Lock()
		s.lastRuns[job.Name()] = result
		s.mu.Unlock()

		if result.Success {
			s.log.Info("job completed",
				logger.String("job", job.Name()),
				logger.Latency(result.Duration))
		} else {
			s.log.Error("job failed",
				logger.String("job", job.Name()),
				logger.Latency(result.Duration),
				logger.Err(result.Error))
		}
	}()

	result.Error = job.Run(ctx)
}

// RunNow executes a job immediately, outside its schedule. Used by
// operational tooling.
func (s *Scheduler) RunNow(job Job) JobResult {
	s.runJob(job)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRuns[job.Name()]
}

// LastRun returns the most recent result for a job name.
func (s *Scheduler) LastRun(name string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.lastRuns[name]
	return result, ok
}

// Start begins schedule evaluation. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts schedule evaluation and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
