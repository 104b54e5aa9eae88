// Package sorter runs a pass: scan a directory, classify every file and
// move it into its category folder, one file at a time.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sortify-app/sortify/internal/classifier"
	"github.com/sortify-app/sortify/internal/detect"
	"github.com/sortify-app/sortify/internal/progress"
	"github.com/sortify-app/sortify/internal/relocator"
	"github.com/sortify-app/sortify/internal/scanner"
)

// State is where a pass is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateScanning
	StateClassifying
	StateRelocating
	StateDone
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateClassifying:
		return "classifying"
	case StateRelocating:
		return "relocating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrPassRunning is returned when Run is called on a pass that has not finished
var ErrPassRunning = errors.New("pass is already running")

// SkipCancelled is the detail recorded for entries left alone after cancellation
const SkipCancelled = "cancelled"

// Options configures a Pass
type Options struct {
	Scanner    *scanner.Scanner
	Classifier *classifier.Classifier
	// Fallback receives files the classifier does not recognise
	Fallback string

	// Detect enables content sniffing; Policy and ManualCategory apply only then
	Detect         bool
	Policy         detect.Policy
	ManualCategory string

	DryRun bool
	// LockDir holds per-directory lock files; empty disables locking
	LockDir string

	Logger   *slog.Logger
	Progress *progress.Reporter
}

// Pass composes the scanner, classifier and relocator
type Pass struct {
	opts Options

	mu      sync.Mutex
	state   State
	running bool
}

// New creates a Pass
func New(opts Options) (*Pass, error) {
	if opts.Scanner == nil || opts.Classifier == nil {
		return nil, errors.New("pass requires a scanner and a classifier")
	}
	if err := classifier.ValidateCategory(opts.Fallback); err != nil {
		return nil, fmt.Errorf("fallback category: %w", err)
	}
	if opts.Detect {
		if err := classifier.ValidateCategory(opts.ManualCategory); err != nil {
			return nil, fmt.Errorf("manual category: %w", err)
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Progress == nil {
		opts.Progress = progress.NewReporter()
	}
	return &Pass{opts: opts}, nil
}

// State returns the current lifecycle state
func (p *Pass) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Progress returns the reporter the pass publishes to
func (p *Pass) Progress() *progress.Reporter {
	return p.opts.Progress
}

func (p *Pass) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run sorts dir. Only a failure to start (scan or lock) is returned as an
// error; per-file problems are recorded in the report. Cancelling ctx stops
// moving files; the remaining entries are reported as skipped.
func (p *Pass) Run(ctx context.Context, dir string) (*Report, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrPassRunning
	}
	p.running = true
	p.state = StateScanning
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.state = StateDone
		p.mu.Unlock()
	}()

	start := time.Now()
	status := progress.SortProgress{
		Phase:     progress.PhaseScanning,
		Directory: dir,
		DryRun:    p.opts.DryRun,
		StartTime: start,
	}
	p.opts.Progress.Update(status)

	listing, err := p.opts.Scanner.Scan(dir)
	if err != nil {
		status.Phase = progress.PhaseError
		status.Error = err
		p.opts.Progress.Update(status)
		return nil, err
	}

	if !p.opts.DryRun && p.opts.LockDir != "" {
		lock, err := acquireLock(p.opts.LockDir, listing.Dir)
		if err != nil {
			status.Phase = progress.PhaseError
			status.Error = err
			p.opts.Progress.Update(status)
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				p.opts.Logger.Warn("failed to release pass lock", "error", err)
			}
		}()
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Directory: listing.Dir,
		DryRun:    p.opts.DryRun,
		StartedAt: start,
	}
	logger := p.opts.Logger.With("run_id", report.RunID, "directory", listing.Dir)
	rel := relocator.New(relocator.Options{DryRun: p.opts.DryRun, Logger: logger})

	status.Directory = listing.Dir
	status.Phase = progress.PhaseSorting
	status.Total = listing.Len()
	p.opts.Progress.Update(status)

	done := make(map[string]struct{})
	var handle func(entry scanner.FileEntry)
	handle = func(entry scanner.FileEntry) {
		done[entry.Name] = struct{}{}

		var res relocator.MoveResult
		if ctx.Err() != nil {
			report.Cancelled = true
			res = relocator.Skipped(entry, SkipCancelled)
		} else {
			res = p.process(entry, listing.Dir, rel, logger, func(category string) {
				// A file named like the category folder has to move out of the way first
				blocker, ok := listing.Entry(category)
				if !ok || blocker.Name == entry.Name {
					return
				}
				if _, seen := done[blocker.Name]; seen {
					return
				}
				logger.Debug("moving file that holds a category folder name", "file", blocker.Name, "category", category)
				handle(blocker)
			})
		}
		report.Results = append(report.Results, res)

		status.Processed++
		status.CurrentFile = entry.Name
		switch res.Outcome {
		case relocator.OutcomeMoved:
			status.Moved++
		case relocator.OutcomeSkipped:
			status.Skipped++
		case relocator.OutcomeFailed:
			status.Failed++
		}
		if status.Processed > status.Total {
			status.Total = status.Processed
		}
		p.opts.Progress.Update(status)
	}

	for entry := range listing.All() {
		if _, seen := done[entry.Name]; seen {
			continue
		}
		handle(entry)
	}

	report.FinishedAt = time.Now()
	status.Phase = progress.PhaseComplete
	status.CurrentFile = ""
	p.opts.Progress.Update(status)

	logger.Info("pass complete",
		"moved", report.Moved(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
		"dry_run", report.DryRun,
		"duration", report.Duration().String())

	return report, nil
}

// process classifies and relocates one entry. makeRoom is called with the
// category before the move so a file holding the folder name can go first.
func (p *Pass) process(entry scanner.FileEntry, baseDir string, rel *relocator.Relocator, logger *slog.Logger, makeRoom func(category string)) relocator.MoveResult {
	p.setState(StateClassifying)
	category, skip, note := p.categorize(entry, logger)
	if skip {
		logger.Debug("skipped", "file", entry.Name, "reason", note)
		return relocator.Skipped(entry, note)
	}
	makeRoom(category)

	p.setState(StateRelocating)
	res := rel.Relocate(entry, category, baseDir)
	if note != "" && res.Detail == "" {
		res.Detail = note
	}
	return res
}

// categorize picks the destination category for entry. Unclassified files go
// to the fallback category; only detection policies can skip a file.
func (p *Pass) categorize(entry scanner.FileEntry, logger *slog.Logger) (category string, skip bool, note string) {
	ext := entry.Extension

	if p.opts.Detect {
		sig, err := detect.Sniff(entry.Path)
		if err != nil {
			// Unreadable header: fall back to the name, the move reports real problems
			logger.Debug("signature detection failed", "file", entry.Name, "error", err)
		} else {
			d := p.opts.Policy.Decide(ext, sig, p.opts.Classifier.ClassifyExtension)
			switch d.Verdict {
			case detect.VerdictSkip:
				return "", true, d.Reason
			case detect.VerdictManual:
				logger.Info("extension does not match content", "file", entry.Name, "detail", d.Reason)
				return p.opts.ManualCategory, false, d.Reason
			}
			if d.Mismatch {
				note = d.Reason
			}
			ext = d.Extension
		}
	}

	category, ok := p.opts.Classifier.Classify(entry)
	if ext != entry.Extension {
		category, ok = p.opts.Classifier.ClassifyExtension(ext)
	}
	if ok {
		return category, false, note
	}
	return p.opts.Fallback, false, note
}
