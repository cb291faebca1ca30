package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/importer"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Manage charts",
	}

	cmd.AddCommand(
		newChartNewCmd(app),
		newChartListCmd(app),
		newChartShowCmd(app),
		newChartRemoveCmd(app),
		newChartExportCmd(app),
		newChartImportCmd(app),
		newChartViewCmd(app),
	)

	return cmd
}

func newChartNewCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Charts.Create(cmd.Context(), args[0], title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created chart %s [%s]\n", c.Name, c.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Chart title (defaults to the name)")
	return cmd
}

func newChartListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			charts, err := app.Charts.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(charts) == 0 {
				fmt.Fprintln(out, formatter.Dim("No charts yet. Create one with 'gantt chart new NAME'."))
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(charts))
			for _, c := range charts {
				id := c.ID
				if len(id) > 8 {
					id = id[:8]
				}
				fp := c.Fingerprint
				if len(fp) > 12 {
					fp = fp[:12]
				}
				rows = append(rows, []string{
					id, c.Name, strconv.Itoa(c.RowCount),
					formatter.Timestamp(c.UpdatedAt, now), formatter.Dim(fp),
				})
			}
			fmt.Fprint(out, formatter.Table{
				Headers:    []string{"ID", "Name", "Rows", "Updated", "Fingerprint"},
				Rows:       rows,
				RightAlign: map[int]bool{2: true},
			}.Render())
			return nil
		},
	}
}

func newChartShowCmd(app *App) *cobra.Command {
	var bars bool
	var opts formatter.GanttOptions

	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Print a chart's rows, optionally with bars",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := chartRef(cmd, args)
			if err != nil {
				return err
			}
			sess, err := app.Charts.Open(cmd.Context(), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderChart(sess, bars, opts))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&bars, "bars", "b", false, "Draw the Gantt bars under the table")
	addWindowFlags(cmd, &opts)
	return cmd
}

func addWindowFlags(cmd *cobra.Command, opts *formatter.GanttOptions) {
	cmd.Flags().StringVar(&opts.From, "from", "", "First day drawn, in the chart's date format")
	cmd.Flags().StringVar(&opts.To, "to", "", "Last day drawn, in the chart's date format")
	cmd.Flags().IntVar(&opts.MaxDays, "days", formatter.DefaultGanttDays, "Maximum number of days drawn")
}

// renderChart is the text shared by show and view.
func renderChart(sess *service.Session, bars bool, opts formatter.GanttOptions) string {
	settings := sess.Editor.Settings()
	snap := sess.Editor.Snapshot()
	past, future := sess.Editor.History().Len()

	title := settings.Title
	if title == "" {
		title = sess.Chart.Name
	}
	s := formatter.Header(title) + "\n"
	s += formatter.Dim(fmt.Sprintf("%s  format %s  undo %d  redo %d",
		sess.Chart.DisplayID(), settings.DateFormat, past, future)) + "\n\n"
	s += formatter.RenderRows(snap)
	if bars {
		s += "\n" + formatter.RenderGantt(settings, snap, opts)
	}
	return s
}

func newChartRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a chart and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(app, fmt.Sprintf("Delete chart %s and its history?", args[0]), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err := app.Charts.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed chart %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newChartExportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export [NAME]",
		Short: "Write a chart as a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := chartRef(cmd, args)
			if err != nil {
				return err
			}

			enc := importer.EncodingJSON
			switch {
			case format == "yaml" || format == "yml":
				enc = importer.EncodingYAML
			case format == "" && output != "":
				enc = importer.EncodingFor(output)
			case format != "" && format != "json":
				return fmt.Errorf("unknown export format %q (want json or yaml)", format)
			}

			data, err := app.Imports.Export(cmd.Context(), ref, enc)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", ref, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newChartImportCmd(app *App) *cobra.Command {
	var opts service.ImportOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge or append a snapshot file (JSON, JSONC or YAML) into --chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := chartRef(cmd, nil)
			if err != nil {
				return err
			}
			res, err := app.Imports.ImportFile(cmd.Context(), ref, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Created {
				fmt.Fprintf(out, "Created chart %s [%s]\n", res.Chart.Name, res.Chart.DisplayID())
			}
			if opts.Append {
				fmt.Fprintf(out, "Appended %d rows to %s\n", len(res.Appended), res.Chart.Name)
			} else {
				fmt.Fprintf(out, "Imported %s into %s\n", args[0], res.Chart.Name)
			}
			printResult(out, res.Result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Append, "append", false, "Append the file's rows under fresh ids instead of merging")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create the chart when it does not exist")
	return cmd
}

func newChartViewCmd(app *App) *cobra.Command {
	var opts formatter.GanttOptions

	cmd := &cobra.Command{
		Use:   "view [NAME]",
		Short: "Open a scrollable Gantt view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := chartRef(cmd, args)
			if err != nil {
				return err
			}
			sess, err := app.Charts.Open(cmd.Context(), ref)
			if err != nil {
				return err
			}
			m := newChartViewer(sess, opts)
			if app.RunProgram != nil {
				return app.RunProgram(m)
			}
			return runProgram(m)
		},
	}

	addWindowFlags(cmd, &opts)
	return cmd
}
