package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/sortify-app/sortify/internal/progress"
	"github.com/sortify-app/sortify/internal/ui/utils"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveProgress draws a single self-updating status line for non-interactive runs
type LiveProgress struct {
	out       io.Writer
	termWidth int

	mu         sync.Mutex
	lastUpdate time.Time
	frame      int
	drawn      bool

	done chan struct{}
}

// NewLiveProgress creates a progress line on out. Width is taken from the
// terminal when out is one.
func NewLiveProgress(out io.Writer) *LiveProgress {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return &LiveProgress{
		out:       out,
		termWidth: width,
		done:      make(chan struct{}),
	}
}

// Follow renders every update from reporter until Finish is called
func (lp *LiveProgress) Follow(reporter *progress.Reporter) {
	ch := reporter.Subscribe()
	go func() {
		defer reporter.Unsubscribe(ch)
		for {
			select {
			case p, ok := <-ch:
				if !ok {
					return
				}
				lp.Update(p)
			case <-lp.done:
				return
			}
		}
	}()
}

// Update redraws the line, at most ten times a second
func (lp *LiveProgress) Update(p *progress.SortProgress) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	select {
	case <-lp.done:
		return
	default:
	}

	now := time.Now()
	if p.Phase == progress.PhaseSorting && now.Sub(lp.lastUpdate) < 100*time.Millisecond {
		return
	}
	lp.lastUpdate = now
	lp.frame = (lp.frame + 1) % len(spinnerFrames)

	line := spinnerFrames[lp.frame] + " " + progress.Format(p)
	if p.CurrentFile != "" {
		line += " " + p.CurrentFile
	}
	fmt.Fprintf(lp.out, "\r\033[K%s", utils.TruncateString(line, lp.termWidth-1))
	lp.drawn = true
}

// Finish stops following and clears the line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	select {
	case <-lp.done:
		return
	default:
		close(lp.done)
	}
	if lp.drawn {
		fmt.Fprint(lp.out, "\r\033[K")
	}
}
