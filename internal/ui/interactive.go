package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortify-app/sortify/internal/sorter"
	"github.com/sortify-app/sortify/internal/ui/models"
)

// RunInteractive plans the sort, asks for confirmation and then sorts.
// It returns the report of the last pass that finished.
func RunInteractive(ctx context.Context, session models.Session) (*sorter.Report, error) {
	m := models.NewAppModel(ctx, session)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running interactive mode: %w", err)
	}

	app, ok := final.(*models.AppModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app.Report(), nil
}
