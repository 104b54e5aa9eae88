package sorter

import (
	"sort"
	"time"

	"github.com/sortify-app/sortify/internal/relocator"
)

// Report is the result of one pass
type Report struct {
	RunID      string                 `json:"run_id" yaml:"run_id"`
	Directory  string                 `json:"directory" yaml:"directory"`
	DryRun     bool                   `json:"dry_run" yaml:"dry_run"`
	StartedAt  time.Time              `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time              `json:"finished_at" yaml:"finished_at"`
	Cancelled  bool                   `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Results    []relocator.MoveResult `json:"results" yaml:"results"`
}

// Duration returns how long the pass took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Total is the number of entries the pass processed
func (r *Report) Total() int {
	return len(r.Results)
}

// Count returns the number of results with the given outcome
func (r *Report) Count(outcome relocator.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Moved returns the number of moved files
func (r *Report) Moved() int { return r.Count(relocator.OutcomeMoved) }

// Skipped returns the number of skipped files
func (r *Report) Skipped() int { return r.Count(relocator.OutcomeSkipped) }

// Failed returns the number of failed files
func (r *Report) Failed() int { return r.Count(relocator.OutcomeFailed) }

// MovedSize sums the sizes of moved files
func (r *Report) MovedSize() int64 {
	var total int64
	for _, res := range r.Results {
		if res.Outcome == relocator.OutcomeMoved {
			total += res.Size
		}
	}
	return total
}

// CategoryCount is the number of files moved into one category
type CategoryCount struct {
	Category string
	Files    int
	Size     int64
}

// ByCategory groups moved files by category, largest first
func (r *Report) ByCategory() []CategoryCount {
	idx := make(map[string]int)
	var out []CategoryCount
	for _, res := range r.Results {
		if res.Outcome != relocator.OutcomeMoved {
			continue
		}
		i, ok := idx[res.Category]
		if !ok {
			i = len(out)
			idx[res.Category] = i
			out = append(out, CategoryCount{Category: res.Category})
		}
		out[i].Files++
		out[i].Size += res.Size
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Failures returns the failed results
func (r *Report) Failures() []relocator.MoveResult {
	return r.filter(relocator.OutcomeFailed)
}

// SkippedResults returns the skipped results
func (r *Report) SkippedResults() []relocator.MoveResult {
	return r.filter(relocator.OutcomeSkipped)
}

// Errors returns the categorized errors of failed results
func (r *Report) Errors() []*relocator.MoveError {
	var out []*relocator.MoveError
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res.Err)
		}
	}
	return out
}

func (r *Report) filter(outcome relocator.Outcome) []relocator.MoveResult {
	var out []relocator.MoveResult
	for _, res := range r.Results {
		if res.Outcome == outcome {
			out = append(out, res)
		}
	}
	return out
}
