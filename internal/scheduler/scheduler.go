// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single run of a job.
const DefaultTimeout = 5 * time.Minute

// Job does one unit of periodic work and reports how many items it touched.
type Job func(ctx context.Context) (int, error)

// Scheduler runs a single named Job on a six-field cron spec
// (seconds first). Runs never overlap; a tick that fires while the previous
// run is still going is skipped.
type Scheduler struct {
	name    string
	job     Job
	timeout time.Duration
	logger  *zap.Logger

	cron    *cron.Cron
	running atomic.Bool

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	base    context.Context
}

// New validates spec and prepares a scheduler. It does not start it.
func New(name, spec string, job Job, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler %s: job is required", name)
	}
	schedule, err := cron.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler %s: invalid spec %q: %w", name, spec, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s := &Scheduler{
		name:    name,
		job:     job,
		timeout: timeout,
		logger:  logger.Named("scheduler").With(zap.String("job", name)),
		cron:    cron.New(),
	}
	s.cron.ErrorLog = zap.NewStdLog(s.logger)
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.RunOnce() }))
	return s, nil
}

// Start begins firing the job on schedule.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	s.started = true
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts the schedule and cancels an in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cron.Stop()
	s.cancel()
	s.started = false
	s.logger.Info("scheduler stopped")
}

// RunOnce runs the job synchronously with the configured timeout. It returns
// false when another run was already in progress.
func (s *Scheduler) RunOnce() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping")
		return false
	}
	defer s.running.Store(false)

	s.mu.Lock()
	parent := s.base
	s.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	began := time.Now()
	n, err := s.job(ctx)
	fields := []zap.Field{zap.Int("processed", n), zap.Duration("took", time.Since(began))}
	if err != nil {
		s.logger.Error("job failed", append(fields, zap.Error(err))...)
		return true
	}
	s.logger.Info("job finished", fields...)
	return true
}
