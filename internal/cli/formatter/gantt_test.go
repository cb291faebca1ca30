package formatter

import (
	"strings"
	"testing"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartSnapshot(rows ...domain.Row) domain.Snapshot {
	return domain.Snapshot{Document: domain.MustDocument(rows...), Columns: domain.DefaultColumns()}
}

func TestRenderGantt_TaskBarSkipsOffDays(t *testing.T) {
	snap := chartSnapshot(
		testutil.NewTestTask("Design", testutil.WithPlanned("2024/01/08", "2024/01/12"), testutil.WithDuration(5)),
	)
	got := RenderGantt(domain.DefaultSettings(), snap, GanttOptions{From: "2024/01/08", To: "2024/01/14"})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Jan")
	assert.True(t, strings.HasSuffix(lines[1], "8901234"), lines[1])
	assert.Contains(t, lines[2], "Design")
	assert.True(t, strings.HasSuffix(lines[2], "█████··"), lines[2])
}

func TestRenderGantt_ActualAndSection(t *testing.T) {
	sep := testutil.NewTestSeparator("Phase 1")
	sep.MinStartDate, sep.MaxEndDate = "2024/01/08", "2024/01/09"
	snap := chartSnapshot(
		sep,
		testutil.NewTestTask("Build",
			testutil.WithPlanned("2024/01/08", "2024/01/09"),
			testutil.WithActual("2024/01/09", "2024/01/10")),
	)
	got := RenderGantt(domain.DefaultSettings(), snap, GanttOptions{})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[2], "━━ "), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "█▓▓"), lines[3])
}

func TestRenderGantt_WindowCapped(t *testing.T) {
	snap := chartSnapshot(
		testutil.NewTestTask("Long", testutil.WithPlanned("2024/01/01", "2024/12/31")),
	)
	got := RenderGantt(domain.DefaultSettings(), snap, GanttOptions{MaxDays: 10})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "1234567890"), lines[1])
}

func TestRenderGantt_NoDates(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.DateRange = domain.DateRange{}
	got := RenderGantt(settings, chartSnapshot(testutil.NewTestTask("Undated")), GanttOptions{})
	assert.Contains(t, got, "no dated rows")
}

func TestRenderRows_VisibleColumns(t *testing.T) {
	a := testutil.NewTestTask("Design", testutil.WithPlanned("2024/01/08", "2024/01/12"), testutil.WithDuration(5))
	b := testutil.NewTestTask("Build", testutil.WithDuration(3), testutil.WithDependency("after,1,2", a.ID), testutil.WithCharge("kim"))
	got := RenderRows(chartSnapshot(a, b, testutil.NewTestEvent("Launch")))

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Start")
	assert.NotContains(t, lines[0], "Actual Start", "hidden columns are skipped")
	assert.Contains(t, lines[2], "2024/01/12")
	assert.Contains(t, lines[3], "after,1,2")
	assert.Contains(t, lines[3], "kim")
	assert.Contains(t, lines[4], "event")
}

func TestRenderRows_ProgressBar(t *testing.T) {
	cols := domain.DefaultColumns()
	for i := range cols {
		cols[i].Visible = cols[i].ID == domain.ColProgress
	}
	task := testutil.NewTestTask("Build")
	task.Progress = "50"
	got := RenderRows(domain.Snapshot{Document: domain.MustDocument(task), Columns: cols})
	assert.Contains(t, got, "████░░░░")
	assert.Contains(t, got, " 50%")
}

func TestRenderGantt_Shift(t *testing.T) {
	snap := chartSnapshot(
		testutil.NewTestTask("Design", testutil.WithPlanned("2024/01/08", "2024/01/12")),
	)
	got := RenderGantt(domain.DefaultSettings(), snap, GanttOptions{Shift: 2})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "01234"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "███··"), lines[2])
}
