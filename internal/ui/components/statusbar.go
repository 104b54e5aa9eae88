package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sortify-app/sortify/internal/ui/styles"
)

// Shortcut is a key hint shown on the right of the status bar
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of every view
type StatusBar struct {
	viewName  string
	files     int
	size      int64
	dryRun    bool
	shortcuts []Shortcut
}

// NewStatusBar creates a new status bar
func NewStatusBar(viewName string) *StatusBar {
	return &StatusBar{viewName: viewName}
}

// SetFiles sets the file count and total size shown after the view name
func (s *StatusBar) SetFiles(files int, size int64) {
	s.files = files
	s.size = size
}

// SetDryRun marks the session as a dry run
func (s *StatusBar) SetDryRun(dryRun bool) {
	s.dryRun = dryRun
}

// SetShortcuts sets the key hints, in display order
func (s *StatusBar) SetShortcuts(shortcuts ...Shortcut) {
	s.shortcuts = shortcuts
}

// Render renders the status bar with the given width
func (s *StatusBar) Render(width int) string {
	if width <= 0 {
		width = 80
	}

	var parts []string
	if s.viewName != "" {
		parts = append(parts, styles.BoldStyle.Render(s.viewName))
	}
	if s.files > 0 {
		parts = append(parts, fmt.Sprintf("%d files", s.files))
	}
	if s.size > 0 {
		parts = append(parts, styles.FileSizeStyle.Render(humanize.IBytes(uint64(s.size))))
	}
	if s.dryRun {
		parts = append(parts, styles.InfoStyle.Render("dry run"))
	}
	leftSide := strings.Join(parts, " • ")

	hints := make([]string, 0, len(s.shortcuts))
	for _, sc := range s.shortcuts {
		hints = append(hints, styles.DimStyle.Render(sc.Key)+":"+sc.Desc)
	}
	rightSide := strings.Join(hints, " ")

	spacing := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if spacing < 1 {
		rightSide = ""
		spacing = 1
	}

	return styles.StatusBarStyle.Width(width).Render(leftSide + strings.Repeat(" ", spacing) + rightSide)
}
