package progress

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterCurrent(t *testing.T) {
	r := NewReporter()
	assert.Nil(t, r.Current())

	r.Update(SortProgress{Phase: PhaseSorting, Processed: 1, Total: 4})
	current := r.Current()
	require.NotNil(t, current)
	assert.Equal(t, 1, current.Processed)
	assert.Equal(t, PhaseSorting, current.Phase)
}

func TestReporterNotifiesSubscribers(t *testing.T) {
	r := NewReporter()
	a := r.Subscribe()
	b := r.Subscribe()

	r.Update(SortProgress{Phase: PhaseScanning, Directory: "/tmp/in"})

	for _, ch := range []<-chan *SortProgress{a, b} {
		select {
		case p := <-ch:
			assert.Equal(t, "/tmp/in", p.Directory)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the update")
		}
	}
}

func TestReporterNeverBlocks(t *testing.T) {
	r := NewReporter()
	ch := r.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Update(SortProgress{Processed: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked on a slow subscriber")
	}

	// The buffer keeps the oldest updates, Current always has the newest
	assert.Equal(t, 0, (<-ch).Processed)
	assert.Equal(t, 99, r.Current().Processed)
}

func TestReporterUnsubscribeClosesChannel(t *testing.T) {
	r := NewReporter()
	ch := r.Subscribe()

	r.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)

	// Updates after unsubscribing must not panic on the closed channel
	assert.NotPanics(t, func() { r.Update(SortProgress{}) })
	// Unsubscribing twice is a no-op
	assert.NotPanics(t, func() { r.Unsubscribe(ch) })
}

func TestReporterConcurrentUse(t *testing.T) {
	r := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ch := r.Subscribe()
			r.Update(SortProgress{Processed: n})
			_ = r.Current()
			r.Unsubscribe(ch)
		}(i)
	}
	wg.Wait()

	assert.NotNil(t, r.Current())
}

func TestFormat(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name     string
		progress *SortProgress
		want     string
	}{
		{"nil", nil, "Preparing..."},
		{"scanning", &SortProgress{Phase: PhaseScanning, Directory: "/in"}, "Scanning /in..."},
		{"sorting start", &SortProgress{Phase: PhaseSorting, Total: 4, StartTime: start}, "Sorting... 0/4 files (0%)"},
		{"planning", &SortProgress{Phase: PhaseSorting, Processed: 4, Total: 4, DryRun: true, StartTime: start}, "Planning... 4/4 files (100%)"},
		{"error", &SortProgress{Phase: PhaseError, Error: errors.New("boom")}, "Sorting error: boom"},
		{"unknown phase", &SortProgress{Phase: "idle"}, "Preparing..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.progress))
		})
	}
}

func TestFormatSortingShowsETA(t *testing.T) {
	p := &SortProgress{
		Phase:     PhaseSorting,
		Processed: 1,
		Total:     3,
		StartTime: time.Now().Add(-10 * time.Second),
	}
	assert.Contains(t, Format(p), "1/3 files (33%) ETA: 20s")
}

func TestFormatComplete(t *testing.T) {
	p := &SortProgress{
		Phase:     PhaseComplete,
		Moved:     3,
		Skipped:   1,
		Failed:    0,
		StartTime: time.Now(),
	}
	assert.Equal(t, "Sorting complete: 3 moved, 1 skipped, 0 failed in 0s", Format(p))
}

func TestFraction(t *testing.T) {
	var nilProgress *SortProgress
	assert.Zero(t, nilProgress.Fraction())
	assert.Zero(t, (&SortProgress{}).Fraction())
	assert.InDelta(t, 0.5, (&SortProgress{Processed: 2, Total: 4}).Fraction(), 1e-9)
	assert.Equal(t, 1.0, (&SortProgress{Processed: 5, Total: 4}).Fraction())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{1400 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}
