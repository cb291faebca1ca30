package cli

import (
	"fmt"

	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the chart's rows and columns to an earlier state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepHistory(cmd, app, "undo", steps, (*service.Editor).Undo)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of steps")
	return cmd
}

func newRedoCmd(app *App) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Re-apply undone changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepHistory(cmd, app, "redo", steps, (*service.Editor).Redo)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of steps")
	return cmd
}

// stepHistory applies step up to n times, stopping early when the stack
// runs out. Nothing is saved when no step applied.
func stepHistory(cmd *cobra.Command, app *App, verb string, n int, step func(*service.Editor) (service.Result, bool)) error {
	if n < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}
	sess, err := openChart(cmd, app)
	if err != nil {
		return err
	}

	applied := 0
	for applied < n {
		if _, ok := step(sess.Editor); !ok {
			break
		}
		applied++
	}
	out := cmd.OutOrStdout()
	if applied == 0 {
		fmt.Fprintf(out, "Nothing to %s.\n", verb)
		return nil
	}
	if err := app.Charts.Save(cmd.Context(), sess); err != nil {
		return err
	}
	past, future := sess.Editor.History().Len()
	fmt.Fprintf(out, "%s: %d step(s) %s\n", verb, applied, formatter.Dim(fmt.Sprintf("(undo %d, redo %d)", past, future)))
	return nil
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the undo and redo depth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openChart(cmd, app)
			if err != nil {
				return err
			}
			h := sess.Editor.History()
			past, future := h.Len()
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"Undo", "Redo", "Limit"},
				[][]string{{fmt.Sprint(past), fmt.Sprint(future), fmt.Sprint(h.Limit())}},
			))
			return nil
		},
	}
}
