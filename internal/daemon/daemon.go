// Package daemon keeps sortify running and sorts configured directories on
// cron schedules.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/sortify-app/sortify/internal/config"
	"github.com/sortify-app/sortify/internal/security"
	"github.com/sortify-app/sortify/internal/sorter"
)

// stopTimeout bounds how long shutdown waits for a running pass
const stopTimeout = 30 * time.Second

// ErrAlreadyRunning is returned when another daemon holds the lock
var ErrAlreadyRunning = errors.New("sortify daemon already running")

// Daemon runs the configured schedules
type Daemon struct {
	config    *config.Config
	setup     sorter.Setup
	validator *security.PathValidator
	scheduler *Scheduler
	logger    *slog.Logger

	mu      sync.RWMutex
	running bool
}

// New creates a daemon for cfg.Schedules. setup supplies the lock directory,
// ignored paths and logger shared by every job.
func New(cfg *config.Config, setup sorter.Setup, validator *security.PathValidator) (*Daemon, error) {
	if len(cfg.Schedules) == 0 {
		return nil, fmt.Errorf("no schedules configured")
	}
	if setup.Logger == nil {
		setup.Logger = slog.New(slog.DiscardHandler)
	}
	if validator == nil {
		validator = security.NewPathValidator()
		validator.AllowHome(cfg.AllowHome)
	}

	d := &Daemon{
		config:    cfg,
		setup:     setup,
		validator: validator,
		logger:    setup.Logger.With("component", "daemon"),
	}
	d.scheduler = NewScheduler(func(ctx context.Context, job Job) error {
		_, err := d.RunJob(ctx, job)
		return err
	}, d.logger)

	for _, s := range cfg.Schedules {
		if err := d.scheduler.AddJob(JobFromConfig(s)); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Scheduler exposes the job scheduler
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// Start runs the schedules until ctx is cancelled
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	if d.setup.LockDir != "" {
		lock, err := d.acquireLock()
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				d.logger.Warn("failed to release daemon lock", "error", err)
			}
		}()
	}

	if err := d.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer d.scheduler.Stop(stopTimeout)

	for _, job := range d.scheduler.ListJobs() {
		d.logger.Info("job scheduled", "job", job.Name, "next_run", job.NextRun)
	}
	d.logger.Info("daemon started", "pid", os.Getpid())

	<-ctx.Done()

	d.logger.Info("daemon shutting down")
	return nil
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// RunJob sorts the job's directory once
func (d *Daemon) RunJob(ctx context.Context, job Job) (*sorter.Report, error) {
	logger := d.logger.With("job", job.Name)

	if err := d.validator.ValidateTarget(job.Directory); err != nil {
		return nil, fmt.Errorf("job %s: %w", job.Name, err)
	}

	setup := d.setup
	setup.DryRun = setup.DryRun || job.DryRun
	setup.Logger = logger
	setup.Progress = nil

	pass, err := sorter.NewFromConfig(d.config, setup)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.Name, err)
	}

	report, err := pass.Run(ctx, job.Directory)
	if err != nil {
		if errors.Is(err, sorter.ErrPassInProgress) {
			logger.Warn("directory is being sorted by another process, skipping run")
		}
		return nil, fmt.Errorf("job %s: %w", job.Name, err)
	}

	logger.Info("job completed",
		"run_id", report.RunID,
		"moved", report.Moved(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
		"duration", report.Duration().String())
	return report, nil
}

func (d *Daemon) acquireLock() (*flock.Flock, error) {
	if err := os.MkdirAll(d.setup.LockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(d.setup.LockDir, "daemon.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}
