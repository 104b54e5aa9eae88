package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sortify-app/sortify/internal/config"
)

// Job is one scheduled directory sort
type Job struct {
	Name      string
	Schedule  string
	Directory string
	DryRun    bool
}

// JobFromConfig converts a configured schedule
func JobFromConfig(s config.Schedule) Job {
	return Job{
		Name:      s.Name,
		Schedule:  s.Cron,
		Directory: s.Directory,
		DryRun:    s.DryRun,
	}
}

// JobFunc executes a job
type JobFunc func(ctx context.Context, job Job) error

// Scheduler manages scheduled sort jobs
type Scheduler struct {
	cron   *cron.Cron
	run    JobFunc
	logger *slog.Logger

	jobsMu  sync.RWMutex
	jobs    map[string]Job
	entries map[string]cron.EntryID
	ctx     context.Context
	running bool
}

// Parser accepts standard five-field expressions and @descriptors
var Parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler creates a new scheduler. A job whose previous run is still
// going is skipped rather than stacked.
func NewScheduler(run JobFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cl := cronLogger{logger: logger}

	c := cron.New(
		cron.WithParser(Parser),
		cron.WithLogger(cl),
		cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		),
	)

	return &Scheduler{
		cron:    c,
		run:     run,
		logger:  logger,
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// Start starts the scheduler. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.ctx = ctx
	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop stops the scheduler and waits for running jobs, up to timeout
func (s *Scheduler) Stop(timeout time.Duration) {
	s.jobsMu.Lock()
	if !s.running {
		s.jobsMu.Unlock()
		return
	}
	s.running = false
	s.jobsMu.Unlock()

	// Running jobs take the read lock, so wait without holding it
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(timeout):
		s.logger.Warn("scheduler stop timed out", "timeout", timeout.String())
	}

	s.logger.Info("scheduler stopped")
}

// AddJob registers a job
func (s *Scheduler) AddJob(job Job) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already exists", job.Name)
	}

	id, err := s.cron.AddFunc(job.Schedule, func() {
		s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", job.Name, err)
	}

	s.jobs[job.Name] = job
	s.entries[job.Name] = id

	s.logger.Info("added job", "job", job.Name, "schedule", job.Schedule, "directory", job.Directory)
	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(name string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.entries, name)
	delete(s.jobs, name)

	s.logger.Info("removed job", "job", name)
	return nil
}

// TriggerJob runs a registered job immediately, outside the schedule
func (s *Scheduler) TriggerJob(ctx context.Context, name string) error {
	s.jobsMu.RLock()
	job, exists := s.jobs[name]
	s.jobsMu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.logger.Info("manually triggering job", "job", name)
	return s.run(ctx, job)
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Job
	NextRun time.Time
	PrevRun time.Time
}

// ListJobs returns the registered jobs sorted by name. NextRun is only set
// once the scheduler is running.
func (s *Scheduler) ListJobs() []JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		entry := s.cron.Entry(s.entries[name])
		jobs = append(jobs, JobInfo{Job: job, NextRun: entry.Next, PrevRun: entry.Prev})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// NextRun computes when a schedule fires next after t
func NextRun(schedule string, t time.Time) (time.Time, error) {
	sched, err := Parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t), nil
}

func (s *Scheduler) execute(job Job) {
	s.jobsMu.RLock()
	ctx := s.ctx
	s.jobsMu.RUnlock()

	if ctx.Err() != nil {
		return
	}

	s.logger.Info("executing scheduled job", "job", job.Name)
	if err := s.run(ctx, job); err != nil {
		s.logger.Error("job failed", "job", job.Name, "error", err)
	}
}

// cronLogger adapts slog to cron's logger interface
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
