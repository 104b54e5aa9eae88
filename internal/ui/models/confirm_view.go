package models

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sortify-app/sortify/internal/relocator"
	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/components"
	"github.com/sortify-app/sortify/internal/ui/styles"
	"github.com/sortify-app/sortify/internal/ui/utils"
)

const (
	buttonSort = iota
	buttonCancel
)

// ConfirmViewModel shows the planned moves and asks before sorting
type ConfirmViewModel struct {
	plan   *sorter.Report
	moves  []relocator.MoveResult
	offset int
	cursor int
	width  int
	height int
}

// NewConfirmViewModel creates a new confirm view model
func NewConfirmViewModel(plan *sorter.Report, width, height int) *ConfirmViewModel {
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var moves []relocator.MoveResult
	for _, res := range plan.Results {
		if res.Outcome == relocator.OutcomeMoved {
			moves = append(moves, res)
		}
	}

	cursor := buttonSort
	if len(moves) == 0 {
		cursor = buttonCancel
	}

	return &ConfirmViewModel{
		plan:   plan,
		moves:  moves,
		cursor: cursor,
		width:  width,
		height: height,
	}
}

// Init initializes the confirm view
func (m *ConfirmViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < m.maxOffset() {
				m.offset++
			}
		case "left", "h":
			m.cursor = buttonSort
		case "right", "l":
			m.cursor = buttonCancel
		case "tab":
			m.cursor = (m.cursor + 1) % 2
		case "enter":
			if m.cursor == buttonSort && len(m.moves) > 0 {
				return m, confirm
			}
			return m, cancel
		case "y":
			if len(m.moves) > 0 {
				return m, confirm
			}
		case "n":
			return m, cancel
		}
	}

	return m, nil
}

func confirm() tea.Msg { return ConfirmedMsg{} }

func cancel() tea.Msg { return CancelledMsg{} }

func (m *ConfirmViewModel) maxOffset() int {
	n := len(m.moves) - utils.CalculatePageSize(m.height)
	if n < 0 {
		return 0
	}
	return n
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	b.WriteString(utils.GetSizeWarningBanner(m.width, m.height))
	b.WriteString(styles.TitleStyle.Render("Confirm Sort"))
	b.WriteString("\n\n")

	if len(m.moves) == 0 {
		b.WriteString(styles.BoldStyle.Render("Nothing to move in " + m.plan.Directory))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("%d files (%s) will be moved",
			len(m.moves), humanize.IBytes(uint64(m.plan.MovedSize())))))
		b.WriteString("\n\n")

		b.WriteString(styles.SubtitleStyle.Render("By category:"))
		b.WriteString("\n")
		for _, c := range m.plan.ByCategory() {
			b.WriteString(fmt.Sprintf("  %s %3d files (%s)\n",
				styles.CategoryStyle.Render(c.Category+":"),
				c.Files,
				styles.FileSizeStyle.Render(humanize.IBytes(uint64(c.Size)))))
		}
		b.WriteString("\n")

		m.renderMoves(&b)
	}

	if n := m.plan.Skipped(); n > 0 {
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf("%d files will be skipped", n)))
		b.WriteString("\n")
	}
	if n := m.plan.Failed(); n > 0 {
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("%d files cannot be moved", n)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	sortBtn, cancelBtn := "[ Sort now ]", "[ Cancel ]"
	if m.cursor == buttonSort {
		sortBtn = styles.HighlightStyle.Render(sortBtn)
	} else {
		cancelBtn = styles.HighlightStyle.Render(cancelBtn)
	}
	b.WriteString(sortBtn + "  " + cancelBtn)
	b.WriteString("\n\n")

	bar := components.NewStatusBar("Confirm")
	bar.SetFiles(m.plan.Total(), m.plan.MovedSize())
	bar.SetShortcuts(
		components.Shortcut{Key: "y", Desc: "sort"},
		components.Shortcut{Key: "n", Desc: "cancel"},
		components.Shortcut{Key: "↑/↓", Desc: "scroll"},
		components.Shortcut{Key: "?", Desc: "help"},
	)
	b.WriteString(bar.Render(m.width))

	return b.String()
}

func (m *ConfirmViewModel) renderMoves(b *strings.Builder) {
	pageSize := utils.CalculatePageSize(m.height)
	end := m.offset + pageSize
	if end > len(m.moves) {
		end = len(m.moves)
	}

	nameWidth := m.width/2 - 4
	for _, res := range m.moves[m.offset:end] {
		dest := res.Category + string(filepath.Separator) + filepath.Base(res.Destination)
		fmt.Fprintf(b, "  %s %s %s\n",
			styles.FileNameStyle.Render(utils.TruncateString(filepath.Base(res.Source), nameWidth)),
			styles.Arrow(),
			utils.TruncateString(dest, nameWidth))
	}
	if len(m.moves) > pageSize {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  showing %d-%d of %d", m.offset+1, end, len(m.moves))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
