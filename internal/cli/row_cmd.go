package cli

import (
	"fmt"
	"strings"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

func newRowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Add, remove, move and rename rows",
		Long: `Rows are addressed by their number in the No column, by full id,
or by a unique id prefix.`,
	}

	cmd.AddCommand(
		newRowAddCmd(app),
		newRowRemoveCmd(app),
		newRowMoveCmd(app),
		newRowRenameCmd(app),
		newRowCollapseCmd(app),
		newRowBarsCmd(app),
	)

	return cmd
}

func parseRowKind(s string) (domain.RowKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "task", "chart":
		return domain.KindChart, nil
	case "separator", "section":
		return domain.KindSeparator, nil
	case "event":
		return domain.KindEvent, nil
	}
	return "", fmt.Errorf("%w: %q (want task, separator or event)", domain.ErrUnknownRowKind, s)
}

func newRowAddCmd(app *App) *cobra.Command {
	var kindStr, before string
	var names []string
	var count int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert empty rows",
		Example: `  gantt row add --name Design --name Build
  gantt row add --kind separator --name "Phase 2" --before 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseRowKind(kindStr)
			if err != nil {
				return err
			}
			if len(names) > count {
				count = len(names)
			}

			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				ed := sess.Editor
				anchor := ""
				if before != "" {
					if anchor, err = resolveRow(ed.Snapshot().Document, before); err != nil {
						return service.Result{}, err
					}
				}

				// Insert and name as one undo step.
				if err := ed.BeginGesture(); err != nil {
					return service.Result{}, err
				}
				ids, res, err := ed.InsertRows(kind, anchor, count)
				if err == nil && len(names) > 0 {
					edits := make([]service.RowEdit, len(names))
					for i, name := range names {
						edits[i] = service.RowEdit{RowID: ids[i], Name: &name}
					}
					res, err = ed.ApplyEdits(edits)
				}
				if _, endErr := ed.EndGesture(); err == nil {
					err = endErr
				}
				if err != nil {
					return service.Result{}, err
				}

				doc := res.Snapshot.Document
				for _, id := range ids {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s [%s]\n", kind, rowLabel(doc, id), id[:8])
				}
				return res, nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindStr, "kind", "k", "task", "Row kind: task, separator or event")
	cmd.Flags().StringVar(&before, "before", "", "Insert before this row (default: append)")
	cmd.Flags().StringArrayVarP(&names, "name", "n", nil, "Name for each new row (repeatable)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of rows to insert")
	return cmd
}

func newRowRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ROW...",
		Aliases: []string{"remove"},
		Short:   "Delete rows; tasks depending on them lose their dependency",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openChart(cmd, app)
			if err != nil {
				return err
			}
			doc := sess.Editor.Snapshot().Document
			ids, err := resolveRows(doc, args)
			if err != nil {
				return err
			}

			labels := make([]string, len(ids))
			for i, id := range ids {
				labels[i] = rowLabel(doc, id)
			}
			ok, err := confirm(app, fmt.Sprintf("Delete %s?", strings.Join(labels, ", ")), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			res, err := sess.Editor.DeleteRows(ids)
			if err != nil {
				return err
			}
			if err := app.Charts.Save(cmd.Context(), sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rows\n", len(ids))
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newRowMoveCmd(app *App) *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "mv ROW...",
		Short: "Move rows as a block before another row, or to the end",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				doc := sess.Editor.Snapshot().Document
				ids, err := resolveRows(doc, args)
				if err != nil {
					return service.Result{}, err
				}
				target := ""
				if before != "" {
					if target, err = resolveRow(doc, before); err != nil {
						return service.Result{}, err
					}
				}
				res, err := sess.Editor.ReorderRows(ids, target)
				if err != nil {
					return service.Result{}, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d rows\n", len(ids))
				return res, nil
			})
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Place the rows before this row (default: end)")
	return cmd
}

func newRowRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ROW NAME",
		Short: "Rename a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				id, err := resolveRow(sess.Editor.Snapshot().Document, args[0])
				if err != nil {
					return service.Result{}, err
				}
				res, err := sess.Editor.Rename(id, args[1])
				if err != nil {
					return service.Result{}, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s\n", rowLabel(res.Snapshot.Document, id))
				return res, nil
			})
		},
	}
}

func newRowCollapseCmd(app *App) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "collapse ROW",
		Short: "Collapse (or with --expand, expand) a separator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				id, err := resolveRow(sess.Editor.Snapshot().Document, args[0])
				if err != nil {
					return service.Result{}, err
				}
				return sess.Editor.SetSeparatorCollapsed(id, !expand)
			})
		},
	}

	cmd.Flags().BoolVar(&expand, "expand", false, "Expand instead of collapse")
	return cmd
}

// parseBar reads START..END with an optional =LABEL suffix.
func parseBar(s string, actual bool) (domain.SubBar, error) {
	span, label, _ := strings.Cut(s, "=")
	start, end, ok := strings.Cut(span, "..")
	if !ok {
		return domain.SubBar{}, fmt.Errorf("bar %q: want START..END[=LABEL]", s)
	}
	return domain.SubBar{
		Start:     strings.TrimSpace(start),
		End:       strings.TrimSpace(end),
		IsPlanned: !actual,
		Label:     strings.TrimSpace(label),
	}, nil
}

func newRowBarsCmd(app *App) *cobra.Command {
	var actual bool

	cmd := &cobra.Command{
		Use:   "bars ROW [START..END[=LABEL]]...",
		Short: "Replace an event row's bars; with no bars given, clear them",
		Example: `  gantt row bars 5 2024/03/04..2024/03/08=Review 2024/03/18..2024/03/19
  gantt row bars 5 --actual 2024/03/05..2024/03/08
  gantt row bars 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bars := make([]domain.SubBar, 0, len(args)-1)
			for _, arg := range args[1:] {
				b, err := parseBar(arg, actual)
				if err != nil {
					return err
				}
				bars = append(bars, b)
			}

			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				id, err := resolveRow(sess.Editor.Snapshot().Document, args[0])
				if err != nil {
					return service.Result{}, err
				}
				res, err := sess.Editor.SetEventBars(id, bars)
				if err != nil {
					return service.Result{}, err
				}
				row, _ := res.Snapshot.Document.Get(id)
				if ev, ok := row.(domain.Event); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s has %d bars\n", rowLabel(res.Snapshot.Document, id), len(ev.SubBars))
				}
				return res, nil
			})
		},
	}

	cmd.Flags().BoolVar(&actual, "actual", false, "Record the bars as actual rather than planned spans")
	return cmd
}
