package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortify-app/sortify/internal/progress"
	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/styles"
	"github.com/sortify-app/sortify/internal/ui/utils"
)

// SortViewModel runs the real pass and follows its progress
type SortViewModel struct {
	ctx       context.Context
	pass      *sorter.Pass
	dir       string
	updates   <-chan *progress.SortProgress
	spinner   spinner.Model
	bar       bprogress.Model
	current   *progress.SortProgress
	startTime time.Time
}

// NewSortViewModel creates a new sort view model
func NewSortViewModel(ctx context.Context, pass *sorter.Pass, dir string) *SortViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &SortViewModel{
		ctx:       ctx,
		pass:      pass,
		dir:       dir,
		spinner:   s,
		bar:       bprogress.New(bprogress.WithDefaultGradient()),
		startTime: time.Now(),
	}
}

// Init subscribes to progress and starts the pass
func (m *SortViewModel) Init() tea.Cmd {
	m.updates = m.pass.Progress().Subscribe()
	return tea.Batch(
		m.spinner.Tick,
		waitForProgress(m.updates),
		m.performSort,
	)
}

// Stop releases the progress subscription
func (m *SortViewModel) Stop() {
	if m.updates != nil {
		m.pass.Progress().Unsubscribe(m.updates)
		m.updates = nil
	}
}

// Update handles messages
func (m *SortViewModel) Update(msg tea.Msg) (*SortViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SortProgressMsg:
		m.current = msg.Progress
		if m.updates == nil {
			return m, nil
		}
		return m, waitForProgress(m.updates)
	}

	return m, nil
}

// View renders the sort view
func (m *SortViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Sorting"))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Moving files... ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.current.Fraction()))
	b.WriteString("\n\n")

	if p := m.current; p != nil {
		b.WriteString(fmt.Sprintf("Progress: %d/%d files\n", p.Processed, p.Total))
		if p.CurrentFile != "" {
			b.WriteString(styles.DimStyle.Render("Current: "))
			b.WriteString(styles.FileNameStyle.Render(utils.TruncateString(p.CurrentFile, 60)))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d\n",
			styles.SuccessStyle.Render("moved"), p.Moved,
			styles.WarningStyle.Render("skipped"), p.Skipped,
			styles.ErrorStyle.Render("failed"), p.Failed))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to stop after the current file"))
	return b.String()
}

func (m *SortViewModel) performSort() tea.Msg {
	report, err := m.pass.Run(m.ctx, m.dir)
	return SortCompleteMsg{Report: report, Err: err}
}

func waitForProgress(ch <-chan *progress.SortProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return SortProgressMsg{Progress: p}
	}
}
