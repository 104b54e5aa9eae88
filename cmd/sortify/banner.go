package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/sortify-app/sortify/internal/reporter"
)

const bannerArt = `            _   _  __
 ___  ___ _ __| |_(_)/ _|_   _
/ __|/ _ \ '__| __| | |_| | | |
\__ \ (_) | |  | |_| |  _| |_| |
|___/\___/|_|   \__|_|_|  \__, |
                          |___/
`

var bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)

// banner is the art printed above the version, coloured on terminals
func banner() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return bannerStyle.Render(bannerArt) + "\n"
	}
	return bannerArt
}

// printBanner greets a person at a terminal. Machine-readable output and
// pipes stay free of it.
func printBanner(w io.Writer, format reporter.OutputFormat, tty bool) {
	if !tty || format != reporter.FormatSummary {
		return
	}
	fmt.Fprint(w, banner())
}
