package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sortify-app/sortify/internal/detect"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories and the extensions they take",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		tbl, err := cfg.Table()
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Category", "Extensions"})
		for _, category := range tbl.Categories() {
			tw.AppendRow(table.Row{category, strings.Join(tbl.Extensions(category), " ")})
		}
		tw.AppendFooter(table.Row{fmt.Sprintf("%d extensions", tbl.Len()), ""})
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 72},
		})
		tw.Render()

		fmt.Printf("\nUnrecognised files go to %q.\n", cfg.FallbackCategory)
		if cfg.Detection.Enabled && cfg.DetectionPolicy().OnMismatch == detect.MismatchManual {
			fmt.Printf("Files whose content contradicts their extension go to %q.\n", cfg.Detection.ManualCategory)
		}
		return nil
	},
}
