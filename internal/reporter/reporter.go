package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/sortify-app/sortify/internal/relocator"
	"github.com/sortify-app/sortify/internal/sorter"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat maps a flag value to an OutputFormat
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	case "":
		return FormatSummary, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want summary, table, json or yaml)", s)
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	color  bool
}

// New creates a new Reporter. Colour is enabled when writer is a terminal.
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		color:  isTerminal(writer),
	}
}

// SetColor overrides terminal detection
func (r *Reporter) SetColor(enabled bool) {
	r.color = enabled
}

// Report writes a pass report
func (r *Reporter) Report(report *sorter.Report) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	case FormatSummary:
		return r.reportSummary(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	movedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func (r *Reporter) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// reportSummary generates the human-readable summary
func (r *Reporter) reportSummary(report *sorter.Report) error {
	w := r.writer
	movedLabel, skippedLabel := "Moved", "Skipped"
	if report.DryRun {
		movedLabel, skippedLabel = "Would move", "Would skip"
	}

	fmt.Fprintln(w, r.paint(headingStyle, "=== Sort Summary ==="))
	fmt.Fprintf(w, "Directory: %s\n", report.Directory)
	if report.DryRun {
		fmt.Fprintln(w, r.paint(dimStyle, "Dry run: no files were moved"))
	}

	moved := report.Results[:0:0]
	for _, res := range report.Results {
		if res.Outcome == relocator.OutcomeMoved {
			moved = append(moved, res)
		}
	}
	if len(moved) > 0 {
		fmt.Fprintf(w, "\n%s\n", r.paint(movedStyle, movedLabel+":"))
		for _, res := range moved {
			fmt.Fprintf(w, "  %s %s %s\n",
				filepath.Base(res.Source),
				r.paint(dimStyle, "→"),
				relativeTo(report.Directory, res.Destination))
		}
	}

	if skipped := report.SkippedResults(); len(skipped) > 0 {
		fmt.Fprintf(w, "\n%s\n", r.paint(skippedStyle, skippedLabel+":"))
		for _, res := range skipped {
			fmt.Fprintf(w, "  %s %s\n", filepath.Base(res.Source), r.paint(dimStyle, "("+res.Detail+")"))
		}
	}

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintf(w, "\n%s\n", r.paint(failedStyle, "Failed:"))
		for _, res := range failures {
			fmt.Fprintf(w, "  %s: %s\n", filepath.Base(res.Source), res.Detail)
		}
		fmt.Fprintf(w, "\n%s", relocator.FormatErrorSummary(report.Errors()))
	}

	fmt.Fprintf(w, "\nBreakdown by Category:\n")
	for _, c := range report.ByCategory() {
		fmt.Fprintf(w, "  %s: %d files, %s\n", c.Category, c.Files, humanize.IBytes(uint64(c.Size)))
	}

	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  %s %d (%s)\n", r.paint(movedStyle, movedLabel+":"), report.Moved(), humanize.IBytes(uint64(report.MovedSize())))
	fmt.Fprintf(w, "  %s %d\n", r.paint(skippedStyle, skippedLabel+":"), report.Skipped())
	fmt.Fprintf(w, "  %s %d\n", r.paint(failedStyle, "Failed:"), report.Failed())
	if report.Cancelled {
		fmt.Fprintln(w, r.paint(skippedStyle, "Pass was cancelled before all files were processed"))
	}

	return nil
}

// reportTable generates a table report
func (r *Reporter) reportTable(report *sorter.Report) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.writer)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Outcome", "Category", "Destination", "Size", "Detail"})

	for _, res := range report.Results {
		dest := ""
		if res.Destination != "" {
			dest = relativeTo(report.Directory, res.Destination)
		}
		tw.AppendRow(table.Row{
			filepath.Base(res.Source),
			res.Outcome.String(),
			res.Category,
			dest,
			humanize.IBytes(uint64(res.Size)),
			res.Detail,
		})
	}

	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d files", report.Total()),
		fmt.Sprintf("%d moved", report.Moved()),
		fmt.Sprintf("%d skipped", report.Skipped()),
		fmt.Sprintf("%d failed", report.Failed()),
		humanize.IBytes(uint64(report.MovedSize())),
		"",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	tw.Render()
	return nil
}

type document struct {
	RunID              string                 `json:"run_id" yaml:"run_id"`
	Timestamp          string                 `json:"timestamp" yaml:"timestamp"`
	Directory          string                 `json:"directory" yaml:"directory"`
	DryRun             bool                   `json:"dry_run" yaml:"dry_run"`
	Cancelled          bool                   `json:"cancelled" yaml:"cancelled"`
	DurationMS         int64                  `json:"duration_ms" yaml:"duration_ms"`
	TotalFiles         int                    `json:"total_files" yaml:"total_files"`
	Moved              int                    `json:"moved" yaml:"moved"`
	Skipped            int                    `json:"skipped" yaml:"skipped"`
	Failed             int                    `json:"failed" yaml:"failed"`
	MovedSize          int64                  `json:"moved_size" yaml:"moved_size"`
	MovedSizeFormatted string                 `json:"moved_size_formatted" yaml:"moved_size_formatted"`
	Results            []relocator.MoveResult `json:"results" yaml:"results"`
}

func newDocument(report *sorter.Report) document {
	results := report.Results
	if results == nil {
		results = []relocator.MoveResult{}
	}
	return document{
		RunID:              report.RunID,
		Timestamp:          report.FinishedAt.Format(time.RFC3339),
		Directory:          report.Directory,
		DryRun:             report.DryRun,
		Cancelled:          report.Cancelled,
		DurationMS:         report.Duration().Milliseconds(),
		TotalFiles:         report.Total(),
		Moved:              report.Moved(),
		Skipped:            report.Skipped(),
		Failed:             report.Failed(),
		MovedSize:          report.MovedSize(),
		MovedSizeFormatted: humanize.IBytes(uint64(report.MovedSize())),
		Results:            results,
	}
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(report *sorter.Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newDocument(report))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(report *sorter.Report) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(newDocument(report))
}

// SaveToFile saves the report to a file
func SaveToFile(report *sorter.Report, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	rptr := New(file, format)
	return rptr.Report(report)
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
