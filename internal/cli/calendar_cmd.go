package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Holidays, regular days off and the date format",
		Long: `Calendar changes re-schedule every task whose span they touch.
Holidays and off-day rules are chart settings: they are saved with the
chart but are not undone by 'gantt undo'.`,
	}

	cmd.AddCommand(
		newCalendarHolidaysCmd(app),
		newCalendarOffDayCmd(app),
		newCalendarFormatCmd(app),
	)

	return cmd
}

func newCalendarHolidaysCmd(app *App) *cobra.Command {
	var set, file string
	var toggle []string

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List, replace or toggle holidays",
		Example: `  gantt calendar holidays
  gantt calendar holidays --toggle 2024/01/03
  gantt calendar holidays --file holidays.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := 0
			for _, f := range []string{"set", "file", "toggle"} {
				if cmd.Flags().Changed(f) {
					changes++
				}
			}
			if changes > 1 {
				return fmt.Errorf("--set, --file and --toggle are mutually exclusive")
			}

			if changes == 0 {
				sess, err := openChart(cmd, app)
				if err != nil {
					return err
				}
				printHolidays(cmd, sess.Editor.Settings().HolidayInput, sess.Editor.Settings().Format())
				return nil
			}

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading holidays: %w", err)
				}
				set = string(data)
			}

			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				ed := sess.Editor
				if len(toggle) == 0 {
					return ed.SetHolidays(set)
				}
				format := ed.Settings().Format()
				var res service.Result
				for _, raw := range toggle {
					day, ok := calendar.Parse(format, raw)
					if !ok {
						return service.Result{}, fmt.Errorf("invalid date %q (format %s)", raw, format)
					}
					var on bool
					var err error
					if res, on, err = ed.ToggleHoliday(day); err != nil {
						return service.Result{}, err
					}
					state := "removed"
					if on {
						state = "added"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Holiday %s %s\n", day.Format(format), state)
				}
				return res, nil
			})
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Replace the holiday list (one date per line, optional name after it)")
	cmd.Flags().StringVar(&file, "file", "", "Replace the holiday list from a file")
	cmd.Flags().StringSliceVar(&toggle, "toggle", nil, "Add or remove single dates")
	return cmd
}

func printHolidays(cmd *cobra.Command, text string, format calendar.Format) {
	out := cmd.OutOrStdout()
	days := calendar.ParseHolidayInput(format, text).Sorted()
	if len(days) == 0 {
		fmt.Fprintln(out, formatter.Dim("No holidays."))
		return
	}
	names := holidayNames(text, format)
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{d.Format(format), d.Weekday().String()[:3], names[d]}
	}
	fmt.Fprint(out, formatter.RenderTable([]string{"Date", "Day", "Name"}, rows))
}

// holidayNames collects the text after each date, keyed by day.
func holidayNames(text string, format calendar.Format) map[calendar.Day]string {
	names := make(map[calendar.Day]string)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if d, ok := calendar.Parse(format, fields[0]); ok {
			names[d] = strings.Join(fields[1:], " ")
		}
	}
	return names
}

func newCalendarOffDayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offday",
		Short: "Show or change the regular days off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openChart(cmd, app)
			if err != nil {
				return err
			}
			printOffDayRules(cmd, sess.Editor.Settings().OffDayRules)
			return nil
		},
	}

	cmd.AddCommand(
		newOffDaySetCmd(app),
		newOffDayAddRuleCmd(app),
		newOffDayRemoveRuleCmd(app),
		newOffDayResetCmd(app),
	)
	return cmd
}

func printOffDayRules(cmd *cobra.Command, rules []calendar.OffDayRule) {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		days := make([]string, 0, 7)
		for _, d := range r.Weekdays.Days() {
			days = append(days, d.String()[:3])
		}
		rows[i] = []string{
			strconv.Itoa(r.ID),
			formatter.RowColor(r.Color, formatter.StyleFg).Render(r.Color),
			formatter.OrDash(strings.Join(days, " ")),
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"Rule", "Color", "Weekdays"}, rows))
}

func newOffDaySetCmd(app *App) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "set RULE WEEKDAY...",
		Short: "Add weekdays to a rule (taking them from any other rule)",
		Example: `  gantt calendar offday set 1 fri
  gantt calendar offday set 2 sunday --remove`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				var res service.Result
				for _, raw := range args[1:] {
					day, err := calendar.ParseWeekday(raw)
					if err != nil {
						return service.Result{}, err
					}
					if res, err = sess.Editor.SetOffDayMembership(ruleID, day, !remove); err != nil {
						return service.Result{}, err
					}
				}
				printOffDayRules(cmd, sess.Editor.Settings().OffDayRules)
				return res, nil
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the weekdays from the rule instead")
	return cmd
}

func newOffDayAddRuleCmd(app *App) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add-rule [WEEKDAY...]",
		Short: "Add an off-day rule with its own color",
		RunE: func(cmd *cobra.Command, args []string) error {
			var days calendar.WeekdaySet
			for _, raw := range args {
				d, err := calendar.ParseWeekday(raw)
				if err != nil {
					return err
				}
				days = days.With(d)
			}
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				current := sess.Editor.Settings().OffDayRules
				id := 1
				for _, r := range current {
					id = max(id, r.ID+1)
				}
				// The new rule goes first so it claims its weekdays.
				rules := append([]calendar.OffDayRule{{ID: id, Color: color, Weekdays: days}}, current...)
				res, err := sess.Editor.SetOffDayRules(rules)
				if err != nil {
					return service.Result{}, err
				}
				printOffDayRules(cmd, sess.Editor.Settings().OffDayRules)
				return res, nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "#e0e0e0", "Rule color")
	return cmd
}

func newOffDayRemoveRuleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-rule RULE",
		Short: "Delete an off-day rule; its weekdays become working days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				current := sess.Editor.Settings().OffDayRules
				rules := make([]calendar.OffDayRule, 0, len(current))
				for _, r := range current {
					if r.ID != ruleID {
						rules = append(rules, r)
					}
				}
				if len(rules) == len(current) {
					return service.Result{}, fmt.Errorf("off-day rule %d not found", ruleID)
				}
				return sess.Editor.SetOffDayRules(rules)
			})
		},
	}
}

func newOffDayResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default Saturday and Sunday rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				return sess.Editor.SetOffDayRules(calendar.DefaultOffDayRules())
			})
		},
	}
}

func newCalendarFormatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "format [FORMAT]",
		Short: "Show or change the date format (yyyy/mm/dd, yyyy-mm-dd, mm/dd/yyyy, dd/mm/yyyy)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				sess, err := openChart(cmd, app)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sess.Editor.Settings().Format())
				return nil
			}
			format, err := calendar.ParseFormat(args[0])
			if err != nil {
				return err
			}
			return editChart(cmd, app, func(sess *service.Session) (service.Result, error) {
				res, err := sess.Editor.SetDateFormat(format)
				if err != nil {
					return service.Result{}, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Date format is now %s\n", format)
				return res, nil
			})
		},
	}
}
