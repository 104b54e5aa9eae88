package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/styles"
	"github.com/sortify-app/sortify/internal/ui/utils"
)

// PlanViewModel runs the dry-run pass behind a spinner
type PlanViewModel struct {
	ctx       context.Context
	pass      *sorter.Pass
	dir       string
	spinner   spinner.Model
	startTime time.Time
}

// NewPlanViewModel creates a new plan view model
func NewPlanViewModel(ctx context.Context, pass *sorter.Pass, dir string) *PlanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &PlanViewModel{
		ctx:       ctx,
		pass:      pass,
		dir:       dir,
		spinner:   s,
		startTime: time.Now(),
	}
}

// Init starts the spinner and the dry run
func (m *PlanViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.performPlan)
}

// Update handles messages
func (m *PlanViewModel) Update(msg tea.Msg) (*PlanViewModel, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the plan view
func (m *PlanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Planning"))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Reading ")
	b.WriteString(styles.FileNameStyle.Render(utils.TruncatePath(m.dir, 60)))
	b.WriteString(" ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")

	if p := m.pass.Progress().Current(); p != nil && p.Total > 0 {
		b.WriteString(fmt.Sprintf("%d/%d files classified\n\n", p.Processed, p.Total))
	}

	b.WriteString(styles.HelpStyle.Render("Press q to cancel"))
	return b.String()
}

func (m *PlanViewModel) performPlan() tea.Msg {
	report, err := m.pass.Run(m.ctx, m.dir)
	return PlanCompleteMsg{Report: report, Err: err}
}
