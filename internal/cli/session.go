package cli

import (
	"fmt"
	"io"

	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

// openChart opens the chart selected by --chart.
func openChart(cmd *cobra.Command, app *App) (*service.Session, error) {
	ref, err := chartRef(cmd, nil)
	if err != nil {
		return nil, err
	}
	return app.Charts.Open(cmd.Context(), ref)
}

// editChart opens the selected chart, runs fn against it and saves the
// chart and its history when fn succeeds. The settled result is printed.
func editChart(cmd *cobra.Command, app *App, fn func(sess *service.Session) (service.Result, error)) error {
	sess, err := openChart(cmd, app)
	if err != nil {
		return err
	}
	res, err := fn(sess)
	if err != nil {
		return err
	}
	if err := app.Charts.Save(cmd.Context(), sess); err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// printResult lists what an edit moved, cleared or warned about.
func printResult(w io.Writer, res service.Result) {
	doc := res.Snapshot.Document
	if doc == nil {
		return
	}
	for _, id := range res.Propagation.Changed {
		t, err := doc.Task(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s %s  %s .. %s\n",
			formatter.StyleBlue.Render("moved"), rowLabel(doc, id),
			formatter.OrDash(t.PlannedStart), formatter.OrDash(t.PlannedEnd))
	}
	for _, id := range res.Cleared {
		fmt.Fprintf(w, "  %s %s\n", formatter.StyleYellow.Render("dependency cleared:"), rowLabel(doc, id))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  %s %s: %s\n", formatter.StyleYellow.Render("warning:"), rowLabel(doc, warn.RowID), warn.Message)
	}
	if !res.Propagation.Converged {
		fmt.Fprintf(w, "  %s dependencies did not settle after %d passes\n",
			formatter.StyleRed.Render("warning:"), res.Propagation.Passes)
	}
}
