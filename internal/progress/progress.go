package progress

import (
	"fmt"
	"sync"
	"time"
)

// Phase represents the current phase of a pass
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseSorting  Phase = "sorting"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// SortProgress represents progress during a pass
type SortProgress struct {
	Phase       Phase
	Directory   string
	CurrentFile string
	Processed   int
	Total       int
	Moved       int
	Skipped     int
	Failed      int
	DryRun      bool
	StartTime   time.Time
	Error       error
}

// Reporter provides thread-safe progress reporting
type Reporter struct {
	current   *SortProgress
	mu        sync.RWMutex
	listeners []chan *SortProgress
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		listeners: make([]chan *SortProgress, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (pr *Reporter) Subscribe() <-chan *SortProgress {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan *SortProgress, 10)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *Reporter) Unsubscribe(ch <-chan *SortProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// Update stores a snapshot and notifies listeners
func (pr *Reporter) Update(update SortProgress) {
	snapshot := &update

	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.current = snapshot

	// Notify all listeners (non-blocking). Sending under the lock keeps
	// Unsubscribe from closing a channel mid-send.
	for _, listener := range pr.listeners {
		select {
		case listener <- snapshot:
		default:
			// Skip if channel is full
		}
	}
}

// Current returns the latest snapshot, nil before the first update
func (pr *Reporter) Current() *SortProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.current
}

// Format returns a human-readable progress line
func Format(p *SortProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)
	verb := "Sorting"
	if p.DryRun {
		verb = "Planning"
	}

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning %s...", p.Directory)
	case PhaseSorting:
		percentage := 0
		if p.Total > 0 {
			percentage = (p.Processed * 100) / p.Total
		}

		eta := ""
		if p.Processed > 0 && p.Total > p.Processed {
			avgTime := elapsed / time.Duration(p.Processed)
			remaining := time.Duration(p.Total-p.Processed) * avgTime
			eta = fmt.Sprintf(" ETA: %s", FormatDuration(remaining))
		}

		return fmt.Sprintf("%s... %d/%d files (%d%%)%s", verb, p.Processed, p.Total, percentage, eta)
	case PhaseComplete:
		return fmt.Sprintf("%s complete: %d moved, %d skipped, %d failed in %s",
			verb, p.Moved, p.Skipped, p.Failed, FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("%s error: %v", verb, p.Error)
	default:
		return "Preparing..."
	}
}

// Fraction returns completion in [0, 1]
func (p *SortProgress) Fraction() float64 {
	if p == nil || p.Total == 0 {
		return 0
	}
	f := float64(p.Processed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
