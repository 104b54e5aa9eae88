package models

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortify-app/sortify/internal/progress"
	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/styles"
)

// ViewState represents the current view in the app
type ViewState int

const (
	ViewPlanning ViewState = iota
	ViewConfirmation
	ViewSorting
	ViewSummary
	ViewHelp
)

// Session holds the passes the interactive flow drives. Plan must be a dry
// run; Sort is nil when nothing should be moved.
type Session struct {
	Dir  string
	Plan *sorter.Pass
	Sort *sorter.Pass
}

// AppModel is the root model for the interactive TUI
type AppModel struct {
	state         ViewState
	previousState ViewState

	ctx     context.Context
	cancel  context.CancelFunc
	session Session

	plan   *sorter.Report
	report *sorter.Report

	planView    *PlanViewModel
	confirmView *ConfirmViewModel
	sortView    *SortViewModel
	summaryView *SummaryViewModel

	width  int
	height int
	err    error
}

// NewAppModel creates a new app model. Cancelling ctx stops a running sort.
func NewAppModel(ctx context.Context, session Session) *AppModel {
	ctx, cancel := context.WithCancel(ctx)
	return &AppModel{
		state:   ViewPlanning,
		ctx:     ctx,
		cancel:  cancel,
		session: session,
	}
}

// Report returns the report of the last pass that ran, nil if none finished
func (m *AppModel) Report() *sorter.Report {
	if m.report != nil {
		return m.report
	}
	return m.plan
}

// Err returns the error that stopped the session
func (m *AppModel) Err() error {
	return m.err
}

// Init initializes the model
func (m *AppModel) Init() tea.Cmd {
	m.planView = NewPlanViewModel(m.ctx, m.session.Plan, m.session.Dir)
	return m.planView.Init()
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == ViewHelp {
			m.state = m.previousState
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			if m.state == ViewSorting {
				// Let the pass record the rest as skipped, then show the summary
				m.cancel()
				return m, nil
			}
			m.cancel()
			return m, tea.Quit
		case "q":
			if m.state != ViewSorting {
				m.cancel()
				return m, tea.Quit
			}
		case "?":
			m.previousState = m.state
			m.state = ViewHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case PlanCompleteMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.plan = msg.Report
		if m.session.Sort == nil {
			m.summaryView = NewSummaryViewModel(m.plan, m.width)
			m.state = ViewSummary
			return m, nil
		}
		m.confirmView = NewConfirmViewModel(m.plan, m.width, m.height)
		m.state = ViewConfirmation
		return m, nil

	case ConfirmedMsg:
		m.sortView = NewSortViewModel(m.ctx, m.session.Sort, m.session.Dir)
		m.state = ViewSorting
		return m, m.sortView.Init()

	case CancelledMsg:
		m.cancel()
		return m, tea.Quit

	case SortCompleteMsg:
		if m.sortView != nil {
			m.sortView.Stop()
		}
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.report = msg.Report
		m.summaryView = NewSummaryViewModel(m.report, m.width)
		m.state = ViewSummary
		return m, nil
	}

	return m.delegateUpdate(msg)
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewPlanning:
		if m.planView != nil {
			m.planView, cmd = m.planView.Update(msg)
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	case ViewSorting:
		if m.sortView != nil {
			m.sortView, cmd = m.sortView.Update(msg)
		}
	case ViewSummary:
		if m.summaryView != nil {
			m.summaryView, cmd = m.summaryView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n"
	}

	switch m.state {
	case ViewPlanning:
		if m.planView != nil {
			return m.planView.View()
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewSorting:
		if m.sortView != nil {
			return m.sortView.View()
		}
	case ViewSummary:
		if m.summaryView != nil {
			return m.summaryView.View()
		}
	case ViewHelp:
		return m.renderHelp()
	}

	return "Loading..."
}

// renderHelp renders the help view for the view it was opened from
func (m *AppModel) renderHelp() string {
	var b strings.Builder

	var viewName, helpContent string
	switch m.previousState {
	case ViewPlanning:
		viewName, helpContent = "Planning", helpPlanning
	case ViewConfirmation:
		viewName, helpContent = "Confirmation", helpConfirm
	case ViewSorting:
		viewName, helpContent = "Sorting", helpSorting
	case ViewSummary:
		viewName, helpContent = "Summary", helpSummary
	}

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Help - %s", viewName)))
	b.WriteString("\n\n")
	b.WriteString(helpContent)
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press any key to close"))

	return b.String()
}

const helpPlanning = `Reading the directory and working out where every file goes.
Nothing is moved yet.

Actions:
  q, ctrl+c  - Quit`

const helpConfirm = `Review the planned moves before anything touches the disk.

Navigation:
  ↑/k, ↓/j   - Scroll the file list
  ←/→, tab   - Switch between buttons

Actions:
  enter      - Activate the highlighted button
  y          - Sort now
  n, q       - Quit without moving anything`

const helpSorting = `Moving files into their category folders.

Actions:
  ctrl+c     - Stop after the current file; the rest are skipped`

const helpSummary = `The pass is finished.

Actions:
  enter, q   - Exit`

// PlanCompleteMsg carries the dry-run report
type PlanCompleteMsg struct {
	Report *sorter.Report
	Err    error
}

// ConfirmedMsg starts the real pass
type ConfirmedMsg struct{}

// CancelledMsg ends the session without sorting
type CancelledMsg struct{}

// SortProgressMsg carries a progress snapshot of the running pass
type SortProgressMsg struct {
	Progress *progress.SortProgress
}

// SortCompleteMsg carries the report of the real pass
type SortCompleteMsg struct {
	Report *sorter.Report
	Err    error
}
