package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sortify-app/sortify/internal/daemon"
	"github.com/sortify-app/sortify/internal/reporter"
	"github.com/sortify-app/sortify/internal/security"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Sort directories on the schedules in the config file",
	Long: `Runs in the foreground and sorts each configured directory whenever its cron
expression fires. Stop with Ctrl+C or SIGTERM; a pass in progress finishes its
current file first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgFile, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, closer, err := newLogger(cfg, false)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		defer closer.Close()

		setup, err := newSetup(cfgFile, logger)
		if err != nil {
			return err
		}

		validator := security.NewPathValidator()
		validator.AllowHome(cfg.AllowHome)

		d, err := daemon.New(cfg, setup, validator)
		if err != nil {
			return fmt.Errorf("failed to create daemon: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return d.Start(ctx)
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured schedules and their next run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if len(cfg.Schedules) == 0 {
			fmt.Println("No schedules configured.")
			return nil
		}

		now := time.Now()
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Name", "Cron", "Directory", "Dry run", "Next run"})
		for _, s := range cfg.Schedules {
			next := "-"
			if t, err := daemon.NextRun(s.Cron, now); err == nil {
				next = t.Format("2006-01-02 15:04")
			}
			tw.AppendRow(table.Row{s.Name, s.Cron, s.Directory, s.DryRun, next})
		}
		tw.Render()
		return nil
	},
}

var scheduleTriggerCmd = &cobra.Command{
	Use:   "trigger <name>",
	Short: "Run one configured schedule now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgFile, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		logger, closer, err := newLogger(cfg, false)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		defer closer.Close()

		setup, err := newSetup(cfgFile, logger)
		if err != nil {
			return err
		}

		d, err := daemon.New(cfg, setup, nil)
		if err != nil {
			return fmt.Errorf("failed to create daemon: %w", err)
		}

		var job *daemon.Job
		for _, info := range d.Scheduler().ListJobs() {
			if info.Name == args[0] {
				j := info.Job
				job = &j
				break
			}
		}
		if job == nil {
			return fmt.Errorf("schedule %q not found", args[0])
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := d.RunJob(ctx, *job)
		if err != nil {
			return err
		}
		return writeReport(report, format)
	},
}

func init() {
	scheduleTriggerCmd.Flags().StringVarP(&outputFmt, "output", "o", "summary", "output format (summary, table, json, yaml)")
	scheduleTriggerCmd.Flags().StringVar(&reportFile, "report-file", "", "save the report to a file instead of printing it")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleTriggerCmd)
}
