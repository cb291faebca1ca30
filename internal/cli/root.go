package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and terminal hooks used by CLI commands.
type App struct {
	Charts  service.ChartService
	Imports service.ImportService

	// DefaultChart is used by commands run without --chart.
	DefaultChart string

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh form.
	Confirm func(title string) (bool, error)
	// RunProgram runs a full-screen model. Nil uses tea.NewProgram.
	RunProgram func(m tea.Model) error
}

// NewRootCmd creates the top-level "gantt" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gantt",
		Short:         "Calendar-aware Gantt chart scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("chart", "c", app.DefaultChart, "Chart name or id prefix")

	root.AddCommand(
		newChartCmd(app),
		newRowCmd(app),
		newTaskCmd(app),
		newCalendarCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
		newHistoryCmd(app),
	)
	return root
}
