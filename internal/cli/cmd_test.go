package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/repository"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/kloir-z/gantt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	charts := service.NewChartService(
		repository.NewSQLiteChartRepo(database),
		testutil.NewTestUoW(database),
		service.Options{},
	)
	return &App{
		Charts:       charts,
		Imports:      service.NewImportService(charts),
		DefaultChart: "plan",
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// mustRun executes a command that is expected to succeed.
func mustRun(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

// seedPlan creates chart "plan" with Design (#1, 01/08-01/12) and Build
// (#2, three days, after,1,2).
func seedPlan(t *testing.T, app *App) {
	t.Helper()
	mustRun(t, app, "chart", "new", "plan")
	mustRun(t, app, "row", "add", "--name", "Design", "--name", "Build")
	mustRun(t, app, "task", "dates", "1", "2024/01/08", "2024/01/12")
	mustRun(t, app, "task", "duration", "2", "3")
	out := mustRun(t, app, "task", "dep", "2", "after,1,2")
	require.Contains(t, out, "#2 Build  2024/01/16 .. 2024/01/18  3d  [after,1,2]")
}

func taskByName(t *testing.T, app *App, name string) domain.ChartTask {
	t.Helper()
	sess, err := app.Charts.Open(context.Background(), "plan")
	require.NoError(t, err)
	for _, task := range sess.Editor.Snapshot().Document.Tasks() {
		if task.DisplayName == name {
			return task
		}
	}
	t.Fatalf("task %q not found", name)
	return domain.ChartTask{}
}

func TestChartCmd_NewListShow(t *testing.T) {
	app := testApp(t)

	out := mustRun(t, app, "chart", "list")
	assert.Contains(t, out, "No charts yet")

	out = mustRun(t, app, "chart", "new", "plan", "--title", "Launch plan")
	assert.Contains(t, out, "Created chart plan")

	_, err := executeCmd(t, app, "chart", "new", "plan")
	assert.Error(t, err, "duplicate name")
	_, err = executeCmd(t, app, "chart", "new", "no spaces")
	assert.Error(t, err)

	mustRun(t, app, "row", "add", "--name", "Design")
	out = mustRun(t, app, "chart", "list")
	assert.Contains(t, out, "plan")
	assert.Contains(t, out, "Fingerprint")

	out = mustRun(t, app, "chart", "show", "--bars")
	assert.Contains(t, out, "LAUNCH PLAN")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "undo 1")
}

func TestChartCmd_NoChartSelected(t *testing.T) {
	app := testApp(t)
	app.DefaultChart = ""
	_, err := executeCmd(t, app, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chart selected")
}

func TestTaskCmd_PropagatesThroughDependency(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	// A start-only edit keeps the duration and drags the dependent.
	out := mustRun(t, app, "task", "dates", "1", "2024/01/15")
	assert.Contains(t, out, "#1 Design  2024/01/15 .. 2024/01/19  5d")
	assert.Contains(t, out, "#2 Build  2024/01/23 .. 2024/01/25")

	build := taskByName(t, app, "Build")
	assert.Equal(t, "2024/01/23", build.PlannedStart)
	assert.Equal(t, "2024/01/25", build.PlannedEnd)
}

func TestTaskCmd_UnsupportedKeywordWarns(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	out := mustRun(t, app, "task", "dep", "2", "before,1")
	assert.Contains(t, out, "warning:")
	assert.Equal(t, "after,1,2", taskByName(t, app, "Build").DependencyExpression)

	mustRun(t, app, "task", "dep", "2", "--clear")
	assert.False(t, taskByName(t, app, "Build").HasDependency())

	_, err := executeCmd(t, app, "task", "dep", "2")
	assert.Error(t, err, "expression or --clear required")
}

func TestTaskCmd_SetBatch(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	_, err := executeCmd(t, app, "task", "set", "1")
	require.Error(t, err, "no field flags")

	mustRun(t, app, "task", "set", "1", "2", "--charge", "kim", "--progress", "40")
	assert.Equal(t, "kim", taskByName(t, app, "Design").Charge)
	assert.Equal(t, "40", taskByName(t, app, "Build").Progress)

	out := mustRun(t, app, "history")
	assert.Contains(t, out, "5     0     30", "one undo step for the whole batch")

	mustRun(t, app, "task", "include-off-days", "1")
	design := taskByName(t, app, "Design")
	assert.True(t, design.IncludeNonWorkingDays)
	assert.Equal(t, "2024/01/12", design.PlannedEnd, "five calendar days from Monday")
}

func TestUndoRedoCmd(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)
	mustRun(t, app, "task", "dates", "1", "2024/01/15")

	out := mustRun(t, app, "undo")
	assert.Contains(t, out, "undo: 1 step(s)")
	assert.Equal(t, "2024/01/16", taskByName(t, app, "Build").PlannedStart)

	mustRun(t, app, "redo")
	assert.Equal(t, "2024/01/23", taskByName(t, app, "Build").PlannedStart)

	out = mustRun(t, app, "undo", "-n", "50")
	assert.Contains(t, out, "undo: 5 step(s)")
	out = mustRun(t, app, "undo")
	assert.Contains(t, out, "Nothing to undo.")

	out = mustRun(t, app, "history")
	assert.Contains(t, out, "30", "default limit")
}

func TestRowCmd_RemoveNeedsConfirmation(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	_, err := executeCmd(t, app, "row", "rm", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	app.IsInteractive = func() bool { return true }
	app.Confirm = func(string) (bool, error) { return false, nil }
	out := mustRun(t, app, "row", "rm", "1")
	assert.Contains(t, out, "Cancelled.")

	app.Confirm = func(title string) (bool, error) {
		assert.Contains(t, title, "#1 Design")
		return true, nil
	}
	out = mustRun(t, app, "row", "rm", "1")
	assert.Contains(t, out, "Removed 1 rows")
	assert.Contains(t, out, "dependency cleared: #1 Build")
	assert.False(t, taskByName(t, app, "Build").HasDependency())
}

func TestRowCmd_MoveRenameAndSections(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	mustRun(t, app, "row", "add", "--kind", "separator", "--name", "Phase 1", "--before", "1")
	out := mustRun(t, app, "chart", "show")
	lines := strings.Split(out, "\n")
	var order []string
	for _, l := range lines {
		for _, name := range []string{"Phase 1", "Design", "Build"} {
			if strings.Contains(l, name) {
				order = append(order, name)
			}
		}
	}
	assert.Equal(t, []string{"Phase 1", "Design", "Build"}, order)
	assert.Contains(t, out, "2024/01/18", "section rolls up its tasks")

	mustRun(t, app, "row", "mv", "3", "--before", "2")
	build := taskByName(t, app, "Build")
	assert.Equal(t, 2, build.No)
	assert.Equal(t, "after,3,2", build.DependencyExpression, "expression follows the renumbered target")

	_, err := executeCmd(t, app, "row", "mv", "2", "--before", "2")
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	mustRun(t, app, "row", "rename", "2", "Implementation")
	assert.Equal(t, 2, taskByName(t, app, "Implementation").No)

	out = mustRun(t, app, "row", "collapse", "2")
	assert.Contains(t, out, "only separators can be collapsed")

	_, err = executeCmd(t, app, "row", "add", "--kind", "milestone")
	assert.ErrorIs(t, err, domain.ErrUnknownRowKind)
}

func TestRowCmd_EventBars(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)
	mustRun(t, app, "row", "add", "--kind", "separator", "--name", "Phase 1", "--before", "1")
	mustRun(t, app, "row", "add", "--kind", "event", "--name", "Reviews")

	out := mustRun(t, app, "row", "bars", "4", "2024/01/22..2024/01/25=Demo", "2024/01/10..2024/01/10")
	assert.Contains(t, out, "#4 Reviews has 2 bars")
	assert.Contains(t, mustRun(t, app, "chart", "show"), "2024/01/25", "section rolls up the event")

	out = mustRun(t, app, "row", "bars", "4", "--actual", "2024/01/23..2024/01/24")
	assert.Contains(t, out, "has 1 bars")

	_, err := executeCmd(t, app, "row", "bars", "2", "2024/01/22..2024/01/25")
	assert.ErrorIs(t, err, domain.ErrNotEvent)

	_, err = executeCmd(t, app, "row", "bars", "4", "2024/01/22")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START..END")
}

func TestParseBar(t *testing.T) {
	b, err := parseBar("2024/01/22 .. 2024/01/25=Demo", false)
	require.NoError(t, err)
	assert.Equal(t, domain.SubBar{Start: "2024/01/22", End: "2024/01/25", IsPlanned: true, Label: "Demo"}, b)

	b, err = parseBar("2024/01/22..2024/01/25", true)
	require.NoError(t, err)
	assert.False(t, b.IsPlanned)
	assert.Empty(t, b.Label)
}

func TestCalendarCmd_HolidaysReflow(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	out := mustRun(t, app, "calendar", "holidays")
	assert.Contains(t, out, "No holidays.")

	out = mustRun(t, app, "calendar", "holidays", "--toggle", "2024/01/10")
	assert.Contains(t, out, "Holiday 2024/01/10 added")
	assert.Equal(t, "2024/01/15", taskByName(t, app, "Design").PlannedEnd)
	assert.Equal(t, "2024/01/17", taskByName(t, app, "Build").PlannedStart)

	mustRun(t, app, "calendar", "holidays", "--set", "2024/01/10 Founders day\n2024/01/11")
	out = mustRun(t, app, "calendar", "holidays")
	assert.Contains(t, out, "Founders day")
	assert.Contains(t, out, "Thu")
	assert.Equal(t, "2024/01/16", taskByName(t, app, "Design").PlannedEnd)

	_, err := executeCmd(t, app, "calendar", "holidays", "--toggle", "10/01/2024")
	assert.Error(t, err)
	_, err = executeCmd(t, app, "calendar", "holidays", "--set", "", "--toggle", "2024/01/10")
	assert.Error(t, err)
}

func TestCalendarCmd_OffDaysAndFormat(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	out := mustRun(t, app, "calendar", "offday", "set", "1", "fri")
	assert.Contains(t, out, "Fri Sat")
	assert.Equal(t, "2024/01/15", taskByName(t, app, "Design").PlannedEnd)

	_, err := executeCmd(t, app, "calendar", "offday", "set", "9", "fri")
	assert.Error(t, err)

	mustRun(t, app, "calendar", "offday", "reset")
	assert.Equal(t, "2024/01/12", taskByName(t, app, "Design").PlannedEnd)

	out = mustRun(t, app, "calendar", "offday", "add-rule", "wed", "--color", "#aabbcc")
	assert.Contains(t, out, "#aabbcc")
	mustRun(t, app, "calendar", "offday", "rm-rule", "3")
	assert.Equal(t, "2024/01/12", taskByName(t, app, "Design").PlannedEnd)

	mustRun(t, app, "calendar", "format", "yyyy-mm-dd")
	out = mustRun(t, app, "calendar", "format")
	assert.Contains(t, out, "yyyy-mm-dd")
	assert.Equal(t, "2024-01-08", taskByName(t, app, "Design").PlannedStart)

	// Undo after a format change still yields dates in the new format.
	mustRun(t, app, "undo")
	assert.Equal(t, "2024-01-08", taskByName(t, app, "Design").PlannedStart)
}

func TestChartCmd_ExportImport(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "plan.yaml")
	mustRun(t, app, "chart", "export", "--output", yamlPath)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: plan")

	out := mustRun(t, app, "chart", "export", "plan", "-f", "json")
	assert.Contains(t, out, `"rowType": "Chart"`)
	_, err = executeCmd(t, app, "chart", "export", "-f", "toml")
	assert.Error(t, err)

	out = mustRun(t, app, "chart", "import", yamlPath, "--chart", "copy", "--create")
	assert.Contains(t, out, "Created chart copy")

	out = mustRun(t, app, "chart", "import", yamlPath, "--append")
	assert.Contains(t, out, "Appended 2 rows to plan")
	out = mustRun(t, app, "chart", "show")
	assert.Contains(t, out, "after,3,2", "appended dependency points at the appended copy")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"cellWidth": -4}`), 0o644))
	_, err = executeCmd(t, app, "chart", "import", bad)
	assert.Error(t, err)
}

func TestChartCmd_Remove(t *testing.T) {
	app := testApp(t)
	mustRun(t, app, "chart", "new", "plan")

	out := mustRun(t, app, "chart", "remove", "plan", "--yes")
	assert.Contains(t, out, "Removed chart plan")
	_, err := executeCmd(t, app, "chart", "show", "plan")
	assert.ErrorIs(t, err, repository.ErrChartNotFound)
}
