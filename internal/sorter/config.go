package sorter

import (
	"fmt"
	"log/slog"

	"github.com/sortify-app/sortify/internal/classifier"
	"github.com/sortify-app/sortify/internal/config"
	"github.com/sortify-app/sortify/internal/progress"
	"github.com/sortify-app/sortify/internal/scanner"
)

// Setup carries the runtime values that do not come from the config file
type Setup struct {
	DryRun bool
	// ExtOnly disables signature detection regardless of config
	ExtOnly bool
	// Fallback overrides the configured fallback category when set
	Fallback string
	// IgnorePaths are never sorted, e.g. the running binary and the config file
	IgnorePaths []string
	LockDir     string
	Logger      *slog.Logger
	Progress    *progress.Reporter
}

// NewFromConfig wires a Pass from the application config
func NewFromConfig(cfg *config.Config, setup Setup) (*Pass, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("build classification table: %w", err)
	}

	fallback := cfg.FallbackCategory
	if setup.Fallback != "" {
		fallback = setup.Fallback
	}

	return New(Options{
		Scanner: scanner.New(scanner.Options{
			ExcludePatterns: cfg.ExcludePatterns,
			SkipHidden:      cfg.SkipHidden,
			IgnorePaths:     setup.IgnorePaths,
		}),
		Classifier:     classifier.New(table),
		Fallback:       fallback,
		Detect:         cfg.Detection.Enabled && !setup.ExtOnly,
		Policy:         cfg.DetectionPolicy(),
		ManualCategory: cfg.Detection.ManualCategory,
		DryRun:         cfg.DryRun || setup.DryRun,
		LockDir:        setup.LockDir,
		Logger:         setup.Logger,
		Progress:       setup.Progress,
	})
}
