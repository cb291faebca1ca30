package cli

import (
	"fmt"
	"strconv"

	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Edit task dates, durations and dependencies",
		Long: `Task edits are scheduled against the chart's working calendar.
Moving a task moves the task it depends on and every task depending on it.

Dependency expressions:
  after,ROW[,DAYS]   start DAYS working days after ROW ends (default 1)
  sameas,ROW         start on the day ROW starts
ROW is an absolute row number, or a signed task count such as -1 for the
task above. Relative references are stored as absolute row numbers.`,
	}

	cmd.AddCommand(
		newTaskDatesCmd(app),
		newTaskActualCmd(app),
		newTaskDepCmd(app),
		newTaskDurationCmd(app),
		newTaskIncludeOffDaysCmd(app),
		newTaskSetCmd(app),
	)

	return cmd
}

// editRow resolves args[0] in the selected chart and runs fn on its id.
func editRow(cmd *cobra.Command, app *App, ref string, fn func(ed *service.Editor, id string) (service.Result, error)) error {
	return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
		id, err := resolveRow(sess.Editor.Snapshot().Document, ref)
		if err != nil {
			return service.Result{}, err
		}
		res, err := fn(sess.Editor, id)
		if err != nil {
			return service.Result{}, err
		}
		printTask(cmd, res, id)
		return res, nil
	})
}

func printTask(cmd *cobra.Command, res service.Result, id string) {
	doc := res.Snapshot.Document
	t, err := doc.Task(id)
	if err != nil {
		return
	}
	line := fmt.Sprintf("%s  %s .. %s", rowLabel(doc, id), orBlank(t.PlannedStart), orBlank(t.PlannedEnd))
	if t.PlannedDuration != nil {
		line += fmt.Sprintf("  %dd", *t.PlannedDuration)
	}
	if t.DependencyExpression != "" {
		line += "  [" + t.DependencyExpression + "]"
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

func orBlank(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func newTaskDatesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dates ROW START [END]",
		Short: "Set the planned span; without END the duration places the end",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRow(cmd, app, args[0], func(ed *service.Editor, id string) (service.Result, error) {
				if len(args) == 2 {
					start := args[1]
					return ed.ApplyEdits([]service.RowEdit{{RowID: id, PlannedStart: &start}})
				}
				return ed.SetPlannedDates(id, args[1], args[2])
			})
		},
	}
}

func newTaskActualCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "actual ROW START [END]",
		Short: "Record the actual span",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			end := ""
			if len(args) == 3 {
				end = args[2]
			}
			return editRow(cmd, app, args[0], func(ed *service.Editor, id string) (service.Result, error) {
				return ed.SetActualDates(id, args[1], end)
			})
		},
	}
}

func newTaskDepCmd(app *App) *cobra.Command {
	var clearDep bool

	cmd := &cobra.Command{
		Use:   "dep ROW [EXPRESSION]",
		Short: "Set or clear a task's dependency",
		Example: `  gantt task dep 3 after,1,2
  gantt task dep 4 sameas,-1
  gantt task dep 4 --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := ""
			if len(args) == 2 {
				expr = args[1]
			} else if !clearDep {
				return fmt.Errorf("expression is required (or pass --clear)")
			}
			return editRow(cmd, app, args[0], func(ed *service.Editor, id string) (service.Result, error) {
				return ed.SetDependency(id, expr)
			})
		},
	}

	cmd.Flags().BoolVar(&clearDep, "clear", false, "Remove the dependency")
	return cmd
}

func newTaskDurationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duration ROW DAYS",
		Short: "Set the planned duration in working days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[1], err)
			}
			return editRow(cmd, app, args[0], func(ed *service.Editor, id string) (service.Result, error) {
				return ed.SetDuration(id, n)
			})
		},
	}
}

func newTaskIncludeOffDaysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "include-off-days ROW [true|false]",
		Short: "Count weekends and holidays as working days for one task",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			include := true
			if len(args) == 2 {
				v, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid flag value %q: %w", args[1], err)
				}
				include = v
			}
			return editRow(cmd, app, args[0], func(ed *service.Editor, id string) (service.Result, error) {
				return ed.SetIncludeNonWorkingDays(id, include)
			})
		},
	}
}

// taskSetFlags mirrors service.RowEdit. Only flags given on the command
// line become edits.
type taskSetFlags struct {
	name, color, charge, progress string
	start, end                    string
	actualStart, actualEnd        string
	dep                           string
	duration                      int
	includeOffDays                bool
}

var taskSetFlagNames = []string{
	"name", "color", "charge", "progress", "start", "end", "duration",
	"actual-start", "actual-end", "dep", "include-off-days",
}

func (f *taskSetFlags) anyChanged(fs *pflag.FlagSet) bool {
	for _, name := range taskSetFlagNames {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func (f *taskSetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Display name")
	fs.StringVar(&f.color, "color", "", "Bar color (#rrggbb)")
	fs.StringVar(&f.charge, "charge", "", "Person in charge")
	fs.StringVar(&f.progress, "progress", "", "Progress, e.g. 40 or 40%")
	fs.StringVar(&f.start, "start", "", "Planned start")
	fs.StringVar(&f.end, "end", "", "Planned end")
	fs.IntVar(&f.duration, "duration", 0, "Planned duration in working days")
	fs.StringVar(&f.actualStart, "actual-start", "", "Actual start")
	fs.StringVar(&f.actualEnd, "actual-end", "", "Actual end")
	fs.StringVar(&f.dep, "dep", "", "Dependency expression (empty clears)")
	fs.BoolVar(&f.includeOffDays, "include-off-days", false, "Count non-working days")
}

func (f *taskSetFlags) edit(fs *pflag.FlagSet, id string) service.RowEdit {
	ed := service.RowEdit{RowID: id}
	str := map[string]**string{
		"name": &ed.Name, "color": &ed.Color, "charge": &ed.Charge, "progress": &ed.Progress,
		"start": &ed.PlannedStart, "end": &ed.PlannedEnd,
		"actual-start": &ed.ActualStart, "actual-end": &ed.ActualEnd, "dep": &ed.Dependency,
	}
	vals := map[string]string{
		"name": f.name, "color": f.color, "charge": f.charge, "progress": f.progress,
		"start": f.start, "end": f.end,
		"actual-start": f.actualStart, "actual-end": f.actualEnd, "dep": f.dep,
	}
	for flag, field := range str {
		if fs.Changed(flag) {
			v := vals[flag]
			*field = &v
		}
	}
	if fs.Changed("duration") {
		ed.Duration = &f.duration
	}
	if fs.Changed("include-off-days") {
		ed.IncludeNonWorkingDays = &f.includeOffDays
	}
	return ed
}

func newTaskSetCmd(app *App) *cobra.Command {
	var flags taskSetFlags

	cmd := &cobra.Command{
		Use:   "set ROW...",
		Short: "Apply several field edits to rows as one undo step",
		Example: `  gantt task set 2 --charge kim --progress 40
  gantt task set 3 4 --dep after,2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.anyChanged(cmd.Flags()) {
				return fmt.Errorf("nothing to set: pass at least one field flag")
			}
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				ids, err := resolveRows(sess.Editor.Snapshot().Document, args)
				if err != nil {
					return service.Result{}, err
				}
				edits := make([]service.RowEdit, len(ids))
				for i, id := range ids {
					edits[i] = flags.edit(cmd.Flags(), id)
				}
				res, err := sess.Editor.ApplyEdits(edits)
				if err != nil {
					return service.Result{}, err
				}
				for _, id := range ids {
					printTask(cmd, res, id)
				}
				return res, nil
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
