package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyfacet/internal/app"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/source"
	"github.com/rebeliceyang/lazyfacet/internal/view"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse records interactively",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	searchFields := cfg.General.SearchFields
	if len(searchFields) == 0 {
		searchFields = textFields(source.DescribeFields(records))
	}

	state := view.New(records,
		view.WithEngine[source.Record](newEngine()),
		view.WithPresets[source.Record](store),
		view.WithSearchFields[source.Record](searchFields...),
		view.WithViewMode[source.Record](models.ParseViewMode(cfg.UI.DefaultView)),
	)
	defer state.Close()

	model := app.New(cfg, state, app.WithLogger(logger))

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// textFields lists the fields a free-text search can sensibly look at
func textFields(fields []models.FieldDescriptor) []string {
	var ids []string
	for _, f := range fields {
		switch f.Type {
		case models.FieldText, models.FieldSelect, models.FieldMultiSelect:
			ids = append(ids, f.ID)
		}
	}
	return ids
}
