package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/spots/internal/tui"
)

// runTUI runs the full interactive view.
func runTUI(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	coord := e.coordinator(nil)
	app := tui.NewApp(tui.AppParams{
		Store:   e.store,
		Editor:  coord,
		Remover: coord,
		Sharer:  e.shares,
	})
	if err := app.Err(); err != nil {
		return fmt.Errorf("load saves: %w", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
