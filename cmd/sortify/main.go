package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sortify-app/sortify/internal/config"
	"github.com/sortify-app/sortify/internal/logging"
	"github.com/sortify-app/sortify/internal/platform"
	"github.com/sortify-app/sortify/internal/reporter"
	"github.com/sortify-app/sortify/internal/security"
	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui"
	"github.com/sortify-app/sortify/internal/ui/models"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath  string
	verbose     bool
	logFormat   string
	dryRun      bool
	extOnly     bool
	fallback    string
	outputFmt   string
	reportFile  string
	interactive bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sortify [directory]",
	Short: "Sort a directory's files into category folders",
	Long: `Sortify moves every file in a directory into a subfolder named after its
category (Pictures, Video, Documents, ...), decided by the file extension and,
when enabled, by the file's content. Existing files are never overwritten:
a name that is taken gets a numeric suffix (photo.jpg becomes photo_1.jpg).`,
	Args:          cobra.MaximumNArgs(1),
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSort,
}

func init() {
	rootCmd.SetVersionTemplate(banner() + "sortify {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (.yaml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show where files would go without moving them")
	rootCmd.Flags().BoolVar(&extOnly, "ext-only", false, "classify by extension only, skip content detection")
	rootCmd.Flags().StringVar(&fallback, "fallback", "", "category for unrecognised files (overrides config)")
	rootCmd.Flags().StringVarP(&outputFmt, "output", "o", "summary", "output format (summary, table, json, yaml)")
	rootCmd.Flags().StringVar(&reportFile, "report-file", "", "save the report to a file instead of printing it")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "plan, confirm and sort in a terminal UI")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg, cfgFile, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}

	format, err := reporter.ParseFormat(outputFmt)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg, interactive)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	dir, err := targetDir(args, cfg)
	if err != nil {
		return err
	}

	validator := security.NewPathValidator()
	validator.AllowHome(cfg.AllowHome)
	if err := validator.ValidateTarget(dir); err != nil {
		return err
	}

	setup, err := newSetup(cfgFile, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *sorter.Report
	if interactive {
		report, err = runInteractive(ctx, cfg, setup, dir)
	} else {
		printBanner(os.Stdout, format, isatty.IsTerminal(os.Stdout.Fd()))
		report, err = runPass(ctx, cfg, setup, dir)
	}
	if err != nil {
		if errors.Is(err, sorter.ErrPassInProgress) {
			return fmt.Errorf("%s: %w", dir, err)
		}
		return fmt.Errorf("sort failed: %w", err)
	}
	if report == nil {
		return nil
	}

	return writeReport(report, format)
}

func runPass(ctx context.Context, cfg *config.Config, setup sorter.Setup, dir string) (*sorter.Report, error) {
	pass, err := sorter.NewFromConfig(cfg, setup)
	if err != nil {
		return nil, err
	}

	if !verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		live := ui.NewLiveProgress(os.Stderr)
		live.Follow(pass.Progress())
		defer live.Finish()
	}

	return pass.Run(ctx, dir)
}

func runInteractive(ctx context.Context, cfg *config.Config, setup sorter.Setup, dir string) (*sorter.Report, error) {
	planSetup := setup
	planSetup.DryRun = true
	plan, err := sorter.NewFromConfig(cfg, planSetup)
	if err != nil {
		return nil, err
	}

	session := models.Session{Dir: dir, Plan: plan}
	if !cfg.DryRun {
		session.Sort, err = sorter.NewFromConfig(cfg, setup)
		if err != nil {
			return nil, err
		}
	}

	return ui.RunInteractive(ctx, session)
}

func writeReport(report *sorter.Report, format reporter.OutputFormat) error {
	if reportFile != "" {
		if err := reporter.SaveToFile(report, reportFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report saved to: %s\n", reportFile)
		return nil
	}

	if err := reporter.New(os.Stdout, format).Report(report); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}

// loadConfig returns the config and the file it came from
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newLogger(cfg *config.Config, quiet bool) (*slog.Logger, io.Closer, error) {
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if !quiet {
		return logging.NewFromConfig(cfg, verbose)
	}

	// The TUI owns the terminal
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File, Output: io.Discard}
	if verbose {
		opts.Level = "debug"
	}
	return logging.New(opts)
}

// newSetup collects the runtime inputs every pass shares
func newSetup(cfgFile string, logger *slog.Logger) (sorter.Setup, error) {
	lockDir, err := lockDirectory()
	if err != nil {
		return sorter.Setup{}, err
	}

	ignore := []string{}
	if abs, err := filepath.Abs(cfgFile); err == nil {
		ignore = append(ignore, abs)
	}
	if exe, err := os.Executable(); err == nil {
		ignore = append(ignore, exe)
	}

	return sorter.Setup{
		DryRun:      dryRun,
		ExtOnly:     extOnly,
		Fallback:    fallback,
		IgnorePaths: ignore,
		LockDir:     lockDir,
		Logger:      logger,
	}, nil
}

func lockDirectory() (string, error) {
	cacheDir, err := platform.GetUserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(cacheDir, platform.AppName, "locks"), nil
}

// targetDir picks the directory argument, then the configured directory,
// then the working directory
func targetDir(args []string, cfg *config.Config) (string, error) {
	dir := cfg.Directory
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return os.Getwd()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, dir[1:])
	}
	return filepath.Abs(dir)
}
