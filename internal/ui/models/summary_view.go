package models

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/components"
	"github.com/sortify-app/sortify/internal/ui/styles"
)

// maxListedFailures caps the failure list so the summary fits one screen
const maxListedFailures = 8

// SummaryViewModel handles the summary/results view
type SummaryViewModel struct {
	report *sorter.Report
	width  int
}

// NewSummaryViewModel creates a new summary view model
func NewSummaryViewModel(report *sorter.Report, width int) *SummaryViewModel {
	return &SummaryViewModel{report: report, width: width}
}

// Init initializes the summary view
func (m *SummaryViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *SummaryViewModel) Update(msg tea.Msg) (*SummaryViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the summary view
func (m *SummaryViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Sort Summary"))
	b.WriteString("\n\n")

	r := m.report
	if r == nil {
		b.WriteString(styles.HelpStyle.Render("Press q or enter to exit"))
		return b.String()
	}

	verb := "Moved"
	if r.DryRun {
		verb = "Would move"
	}
	b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ %s %d files", verb, r.Moved())))
	b.WriteString(" ")
	b.WriteString(styles.FileSizeStyle.Render("(" + humanize.IBytes(uint64(r.MovedSize())) + ")"))
	b.WriteString("\n")

	for _, c := range r.ByCategory() {
		b.WriteString(fmt.Sprintf("  %s %d\n", styles.CategoryStyle.Render(c.Category+":"), c.Files))
	}

	if n := r.Skipped(); n > 0 {
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf("⚠ Skipped %d files", n)))
		b.WriteString("\n")
	}

	if failures := r.Failures(); len(failures) > 0 {
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("✗ %d files could not be moved", len(failures))))
		b.WriteString("\n")
		for i, res := range failures {
			if i == maxListedFailures {
				b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  ... and %d more", len(failures)-i)))
				b.WriteString("\n")
				break
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", filepath.Base(res.Source), res.Detail))
		}
	}

	if r.Cancelled {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render("The pass was stopped; remaining files were left in place."))
		b.WriteString("\n")
	}
	if r.DryRun {
		b.WriteString("\n")
		b.WriteString(styles.InfoStyle.Render("Note: This was a dry run. No files were moved."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press q or enter to exit"))
	b.WriteString("\n\n")

	bar := components.NewStatusBar("Summary")
	bar.SetFiles(r.Total(), r.MovedSize())
	bar.SetDryRun(r.DryRun)
	bar.SetShortcuts(
		components.Shortcut{Key: "q", Desc: "quit"},
		components.Shortcut{Key: "enter", Desc: "exit"},
	)
	b.WriteString(bar.Render(m.width))
	return b.String()
}
