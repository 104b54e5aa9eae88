package sorter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortify-app/sortify/internal/relocator"
)

func sampleReport() *Report {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	vanished := &relocator.MoveError{Path: "/in/gone.txt", Reason: relocator.ErrorSourceVanished, Original: errors.New("gone")}
	return &Report{
		RunID:      "run-1",
		Directory:  "/in",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Results: []relocator.MoveResult{
			{Source: "/in/a.jpg", Category: "images", Outcome: relocator.OutcomeMoved, Size: 100},
			{Source: "/in/b.jpg", Category: "images", Outcome: relocator.OutcomeMoved, Size: 50},
			{Source: "/in/c.txt", Category: "documents", Outcome: relocator.OutcomeMoved, Size: 10},
			{Source: "/in/d.mp3", Category: "audio", Outcome: relocator.OutcomeMoved, Size: 10},
			{Source: "/in/e.part", Outcome: relocator.OutcomeSkipped, Detail: "binary file", Size: 999},
			{Source: "/in/gone.txt", Category: "documents", Outcome: relocator.OutcomeFailed, Reason: relocator.ErrorSourceVanished, Err: vanished},
		},
	}
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, 6, r.Total())
	assert.Equal(t, 4, r.Moved())
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, r.Total(), r.Moved()+r.Skipped()+r.Failed())
	assert.Equal(t, int64(170), r.MovedSize(), "skipped and failed sizes are not counted")
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}

func TestReportByCategory(t *testing.T) {
	got := sampleReport().ByCategory()

	assert.Equal(t, []CategoryCount{
		{Category: "images", Files: 2, Size: 150},
		{Category: "audio", Files: 1, Size: 10},
		{Category: "documents", Files: 1, Size: 10},
	}, got)
}

func TestReportFilters(t *testing.T) {
	r := sampleReport()

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "/in/gone.txt", failures[0].Source)

	skipped := r.SkippedResults()
	require.Len(t, skipped, 1)
	assert.Equal(t, "binary file", skipped[0].Detail)

	errs := r.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, relocator.ErrorSourceVanished, errs[0].Reason)
}

func TestEmptyReport(t *testing.T) {
	r := &Report{}

	assert.Zero(t, r.Total())
	assert.Zero(t, r.MovedSize())
	assert.Empty(t, r.ByCategory())
	assert.Empty(t, r.Failures())
	assert.Empty(t, r.Errors())
}
