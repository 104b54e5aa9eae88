package utils

import (
	"fmt"
	"path/filepath"

	"github.com/muesli/reflow/truncate"

	"github.com/sortify-app/sortify/internal/ui/styles"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 80
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 24
)

// TruncateString cuts s to maxWidth display cells, ending in an ellipsis
func TruncateString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(maxWidth), "…")
}

// TruncatePath keeps the file name and as much of the tail of its directory
// as fits into maxWidth cells
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	dir, file := filepath.Split(path)
	if len(file)+4 >= maxWidth {
		return TruncateString(file, maxWidth)
	}

	avail := maxWidth - len(file) - 1
	dir = filepath.Clean(dir)
	if r := []rune(dir); len(r) > avail {
		dir = "…" + string(r[len(r)-avail+1:])
	}
	return dir + string(filepath.Separator) + file
}

// CalculatePageSize returns how many list rows fit under the headers and
// footers of a view
func CalculatePageSize(terminalHeight int) int {
	const reservedLines = 14

	pageSize := terminalHeight - reservedLines
	if pageSize < 5 {
		pageSize = 5
	}
	return pageSize
}

// IsTerminalTooSmall checks if the terminal is below minimum recommended size
func IsTerminalTooSmall(width, height int) bool {
	return width < MinTerminalWidth || height < MinTerminalHeight
}

// GetSizeWarningBanner returns a warning banner if terminal is too small
func GetSizeWarningBanner(width, height int) string {
	if width == 0 || height == 0 || !IsTerminalTooSmall(width, height) {
		return ""
	}

	warning := "Terminal too small! Recommended: 80x24 or larger" +
		styles.DimStyle.Render(" (current: ") +
		styles.WarningStyle.Render(fmt.Sprintf("%dx%d", width, height)) +
		styles.DimStyle.Render(")")

	return styles.WarningStyle.Render(warning) + "\n\n"
}
