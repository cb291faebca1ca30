package service

import (
	"context"
	"testing"
	"time"

	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/history"
	"github.com/kloir-z/gantt/internal/importer"
	"github.com/kloir-z/gantt/internal/scheduler"
	"github.com/kloir-z/gantt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.events = append(r.events, event)
}

func newTestEditor(t *testing.T, rows ...domain.Row) *Editor {
	t.Helper()
	snap := domain.Snapshot{Document: domain.MustDocument(rows...), Columns: domain.DefaultColumns()}
	return NewEditor(domain.DefaultSettings(), snap, history.New(history.DefaultLimit), scheduler.Options{})
}

func taskOf(t *testing.T, ed *Editor, id string) domain.ChartTask {
	t.Helper()
	task, err := ed.Snapshot().Document.Task(id)
	require.NoError(t, err)
	return task
}

func undoPoints(ed *Editor) int {
	past, _ := ed.History().Len()
	return past
}

// twoTasks builds A (Mon 2024/01/08, five days) followed by an empty B
// with a three-day duration.
func twoTasks(t *testing.T) *Editor {
	t.Helper()
	return newTestEditor(t,
		testutil.NewTestTask("A", testutil.WithTaskID("a"), testutil.WithPlanned("2024/01/08", "2024/01/12"), testutil.WithDuration(5)),
		testutil.NewTestTask("B", testutil.WithTaskID("b"), testutil.WithDuration(3)),
	)
}

func TestEditor_SetDependencyPlacesTask(t *testing.T) {
	ed := twoTasks(t)

	res, err := ed.SetDependency("b", "After, 1, 2")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Contains(t, res.Propagation.Changed, "b")

	b := taskOf(t, ed, "b")
	assert.Equal(t, "after,1,2", b.DependencyExpression)
	assert.Equal(t, "a", b.DependencyTargetID)
	assert.Equal(t, "2024/01/16", b.PlannedStart, "two working days after Friday's end")
	assert.Equal(t, "2024/01/18", b.PlannedEnd)
}

func TestEditor_MovingTargetMovesDependent(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1,2")
	require.NoError(t, err)

	res, err := ed.SetPlannedDates("a", "2024/01/15", "")
	require.NoError(t, err)
	assert.True(t, res.Propagation.Converged)

	a := taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/19", a.PlannedEnd, "end follows the stored duration")
	assert.Equal(t, 5, *a.PlannedDuration)

	b := taskOf(t, ed, "b")
	assert.Equal(t, "2024/01/23", b.PlannedStart)
	assert.Equal(t, "2024/01/25", b.PlannedEnd)

	dates := ed.Settings().Dates()
	gap := dates.Count(a.PlannedEnd, b.PlannedStart, false) - 1
	assert.Equal(t, 2, gap)
}

func TestEditor_MovingDependentMovesTarget(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1,1")
	require.NoError(t, err)

	_, err = ed.SetPlannedDates("b", "2024/01/22", "2024/01/24")
	require.NoError(t, err)

	a := taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/19", a.PlannedEnd)
	assert.Equal(t, "2024/01/15", a.PlannedStart)
}

func TestEditor_ZeroDurationTaskStaysMilestone(t *testing.T) {
	ed := newTestEditor(t,
		testutil.NewTestTask("A", testutil.WithTaskID("a"), testutil.WithPlanned("2024/01/08", "2024/01/12"), testutil.WithDuration(5)),
		testutil.NewTestTask("B", testutil.WithTaskID("b"), testutil.WithPlanned("2024/01/13", "2024/01/14"), testutil.WithDuration(0)),
	)

	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)
	b := taskOf(t, ed, "b")
	assert.Equal(t, "2024/01/15", b.PlannedStart)
	assert.Equal(t, "2024/01/15", b.PlannedEnd)
	assert.Zero(t, *b.PlannedDuration)

	_, err = ed.SetDuration("a", 0)
	require.NoError(t, err)
	a := taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/08", a.PlannedEnd, "a zero-day task ends on its start")
	b = taskOf(t, ed, "b")
	assert.Equal(t, "2024/01/09", b.PlannedStart)
	assert.Equal(t, "2024/01/09", b.PlannedEnd)

	_, err = ed.ApplyEdits([]RowEdit{{RowID: "b", PlannedStart: ptr("2024/01/17")}})
	require.NoError(t, err)
	b = taskOf(t, ed, "b")
	assert.Equal(t, "2024/01/17", b.PlannedEnd)
	assert.Zero(t, *b.PlannedDuration)
	a = taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/16", a.PlannedStart)
	assert.Equal(t, "2024/01/16", a.PlannedEnd)
}

func TestEditor_DatesAndNewDependencyInOneEdit(t *testing.T) {
	ed := newTestEditor(t,
		testutil.NewTestTask("A", testutil.WithTaskID("a"), testutil.WithPlanned("2024/01/08", "2024/01/12"), testutil.WithDuration(5)),
		testutil.NewTestTask("B", testutil.WithTaskID("b"), testutil.WithPlanned("2024/01/15", "2024/01/17"), testutil.WithDuration(3),
			testutil.WithDependency("after,1,1", "a")),
		testutil.NewTestTask("C", testutil.WithTaskID("c"), testutil.WithPlanned("2024/01/22", "2024/01/26"), testutil.WithDuration(5)),
	)

	_, err := ed.ApplyEdits([]RowEdit{{
		RowID:        "b",
		PlannedStart: ptr("2024/02/05"),
		PlannedEnd:   ptr("2024/02/07"),
		Dependency:   ptr("after,3,1"),
	}})
	require.NoError(t, err)

	a := taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/08", a.PlannedStart, "the old target is left where it was")
	assert.Equal(t, "2024/01/12", a.PlannedEnd)

	b := taskOf(t, ed, "b")
	assert.Equal(t, "c", b.DependencyTargetID)
	assert.Equal(t, "2024/01/29", b.PlannedStart)
	assert.Equal(t, "2024/01/31", b.PlannedEnd)
	assert.Equal(t, "2024/01/22", taskOf(t, ed, "c").PlannedStart)
}

func TestEditor_RelativeRefIsStoredAbsolute(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "sameas,-1")
	require.NoError(t, err)

	b := taskOf(t, ed, "b")
	assert.Equal(t, "sameas,1", b.DependencyExpression)
	assert.Equal(t, "2024/01/08", b.PlannedStart)
}

func TestEditor_UnsupportedKeywordWarns(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)

	name := "Renamed"
	res, err := ed.ApplyEdits([]RowEdit{
		{RowID: "b", Dependency: ptr("before,1")},
		{RowID: "a", Name: &name},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "b", res.Warnings[0].RowID)

	assert.Equal(t, "after,1,1", taskOf(t, ed, "b").DependencyExpression, "left untouched")
	assert.Equal(t, "Renamed", taskOf(t, ed, "a").DisplayName, "rest of the batch applied")
}

func TestEditor_MalformedDependencyClears(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)

	res, err := ed.SetDependency("b", "after,99")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.False(t, taskOf(t, ed, "b").HasDependency())
}

func TestEditor_ApplyEditsUnknownRowAbortsBatch(t *testing.T) {
	ed := twoTasks(t)
	before := ed.Snapshot()
	points := undoPoints(ed)

	_, err := ed.ApplyEdits([]RowEdit{
		{RowID: "a", Name: ptr("changed")},
		{RowID: "missing", Name: ptr("x")},
	})
	require.ErrorIs(t, err, domain.ErrRowNotFound)
	assert.True(t, before.Equal(ed.Snapshot()))
	assert.Equal(t, points, undoPoints(ed))
}

func TestEditor_DeleteTargetClearsDependents(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)

	res, err := ed.DeleteRows([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.Cleared)

	b := taskOf(t, ed, "b")
	assert.False(t, b.HasDependency())
	assert.Equal(t, 1, b.No)
}

func TestEditor_ReorderRewritesExpressions(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1,2")
	require.NoError(t, err)

	_, err = ed.ReorderRows([]string{"a"}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, ed.Snapshot().Document.IDs())
	b := taskOf(t, ed, "b")
	assert.Equal(t, "after,2,2", b.DependencyExpression)
	assert.Equal(t, "a", b.DependencyTargetID)

	_, err = ed.ReorderRows([]string{"a"}, "a")
	assert.ErrorIs(t, err, domain.ErrInvalidMove)
}

func TestEditor_InsertRows(t *testing.T) {
	ed := twoTasks(t)

	ids, res, err := ed.InsertRows(domain.KindSeparator, "a", 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 4, res.Snapshot.Document.Len())
	assert.Equal(t, ids[0], res.Snapshot.Document.At(0).RowID())
	assert.Equal(t, 3, taskOf(t, ed, "a").No)

	_, _, err = ed.InsertRows(domain.KindChart, "", 0)
	assert.Error(t, err)
	_, _, err = ed.InsertRows("Milestone", "", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownRowKind)
}

func TestEditor_RollupFollowsEdits(t *testing.T) {
	ed := newTestEditor(t,
		testutil.NewTestSeparator("Phase", "s"),
		testutil.NewTestTask("T1", testutil.WithTaskID("t1")),
	)
	res, err := ed.SetPlannedDates("t1", "2024/01/10", "2024/01/12")
	require.NoError(t, err)

	r, ok := res.Snapshot.Document.Get("s")
	require.True(t, ok)
	sep := r.(domain.Separator)
	assert.Equal(t, "2024/01/10", sep.MinStartDate)
	assert.Equal(t, "2024/01/12", sep.MaxEndDate)
}

func TestEditor_SetEventBars(t *testing.T) {
	ed := newTestEditor(t,
		testutil.NewTestSeparator("Phase", "s"),
		domain.Event{ID: "e", DisplayName: "Reviews"},
		testutil.NewTestTask("T1", testutil.WithTaskID("t1")),
	)
	points := undoPoints(ed)

	res, err := ed.SetEventBars("e", []domain.SubBar{
		{Start: "2024/03/04", End: "2024/03/08", IsPlanned: true, Label: "Review"},
		{Start: "2024/03/20", End: "2024/03/18"},
		{Start: "soon"},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "bar 3")
	assert.Equal(t, points+1, undoPoints(ed))

	r, _ := res.Snapshot.Document.Get("e")
	bars := r.(domain.Event).SubBars
	require.Len(t, bars, 2)
	assert.Equal(t, "Review", bars[0].Label)
	assert.Equal(t, "2024/03/20", bars[1].End, "an end before the start is clamped")

	r, _ = res.Snapshot.Document.Get("s")
	sep := r.(domain.Separator)
	assert.Equal(t, "2024/03/04", sep.MinStartDate)
	assert.Equal(t, "2024/03/20", sep.MaxEndDate)

	_, ok := ed.Undo()
	require.True(t, ok)
	r, _ = ed.Snapshot().Document.Get("e")
	assert.Empty(t, r.(domain.Event).SubBars)

	_, err = ed.SetEventBars("t1", nil)
	assert.ErrorIs(t, err, domain.ErrNotEvent)
	_, err = ed.SetEventBars("nope", nil)
	assert.ErrorIs(t, err, domain.ErrRowNotFound)
}

func TestEditor_UndoRedoFiveEdits(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)

	states := []domain.Snapshot{ed.Snapshot()}
	starts := []string{"2024/01/15", "2024/01/22", "2024/01/29", "2024/02/05", "2024/02/12"}
	for _, s := range starts {
		_, err := ed.SetPlannedDates("a", s, "")
		require.NoError(t, err)
		states = append(states, ed.Snapshot())
	}

	for i := len(starts) - 1; i >= 0; i-- {
		_, ok := ed.Undo()
		require.True(t, ok)
		assert.True(t, states[i].Equal(ed.Snapshot()), "undo to state %d", i)
	}
	for i := 1; i <= len(starts); i++ {
		_, ok := ed.Redo()
		require.True(t, ok)
		assert.True(t, states[i].Equal(ed.Snapshot()), "redo to state %d", i)
	}
	_, ok := ed.Redo()
	assert.False(t, ok)

	_, err = ed.SetPlannedDates("a", "2024/03/04", "")
	require.NoError(t, err)
	assert.Equal(t, "2024/03/11", taskOf(t, ed, "b").PlannedStart, "index rebuilt after undo/redo")
}

func TestEditor_UndoUnderflowIsNoop(t *testing.T) {
	ed := twoTasks(t)
	before := ed.Snapshot()

	res, ok := ed.Undo()
	assert.False(t, ok)
	assert.True(t, before.Equal(res.Snapshot))
}

func TestEditor_NoopEditPushesNothing(t *testing.T) {
	ed := twoTasks(t)
	points := undoPoints(ed)

	_, err := ed.SetPlannedDates("a", "2024/01/08", "2024/01/12")
	require.NoError(t, err)
	assert.Equal(t, points, undoPoints(ed))

	_, err = ed.SetPlannedDates("a", "2024/01/09", "2024/01/12")
	require.NoError(t, err)
	assert.Equal(t, points+1, undoPoints(ed))
}

func TestEditor_GestureThatEndsWhereItStarted(t *testing.T) {
	ed := twoTasks(t)
	points := undoPoints(ed)

	require.NoError(t, ed.BeginGesture())
	assert.Error(t, ed.BeginGesture())
	_, err := ed.SetPlannedDates("a", "2024/01/09", "2024/01/15")
	require.NoError(t, err)
	_, err = ed.SetPlannedDates("a", "2024/01/08", "2024/01/12")
	require.NoError(t, err)

	discarded, err := ed.EndGesture()
	require.NoError(t, err)
	assert.True(t, discarded)
	assert.Equal(t, points, undoPoints(ed))

	_, err = ed.EndGesture()
	assert.Error(t, err)
}

func TestEditor_GestureIsOneUndoStep(t *testing.T) {
	ed := twoTasks(t)
	before := ed.Snapshot()

	require.NoError(t, ed.BeginGesture())
	for _, s := range []string{"2024/01/09", "2024/01/10", "2024/01/11"} {
		_, err := ed.SetPlannedDates("a", s, "")
		require.NoError(t, err)
	}
	discarded, err := ed.EndGesture()
	require.NoError(t, err)
	assert.False(t, discarded)

	_, ok := ed.Undo()
	require.True(t, ok)
	assert.True(t, before.Equal(ed.Snapshot()))
}

func TestEditor_GestureSurvivesDateFormatChange(t *testing.T) {
	ed := twoTasks(t)
	points := undoPoints(ed)

	require.NoError(t, ed.BeginGesture())
	_, err := ed.SetDateFormat(calendar.FormatDashYMD)
	require.NoError(t, err)
	_, err = ed.SetPlannedDates("a", "2024-01-09", "2024-01-15")
	require.NoError(t, err)
	_, err = ed.SetPlannedDates("a", "2024-01-08", "2024-01-12")
	require.NoError(t, err)

	discarded, err := ed.EndGesture()
	require.NoError(t, err)
	assert.True(t, discarded, "only the format changed")
	assert.Equal(t, points, undoPoints(ed))
	assert.Equal(t, "2024-01-08", taskOf(t, ed, "a").PlannedStart)
}

func TestEditor_PushAndDiscard(t *testing.T) {
	ed := twoTasks(t)
	ed.PushSnapshot()
	ed.PushSnapshot()
	assert.Equal(t, 2, undoPoints(ed))
	assert.Equal(t, 2, ed.DiscardLast(5))
	assert.Equal(t, 0, undoPoints(ed))
}

func TestEditor_HolidayReflow(t *testing.T) {
	ed := newTestEditor(t,
		testutil.NewTestTask("A", testutil.WithTaskID("a"), testutil.WithPlanned("2024/01/02", "2024/01/04"), testutil.WithDuration(3)),
		testutil.NewTestTask("B", testutil.WithTaskID("b"), testutil.WithDuration(2)),
		testutil.NewTestTask("C", testutil.WithTaskID("c"), testutil.WithPlanned("2024/02/01", "2024/02/02"), testutil.WithDuration(2)),
	)
	_, err := ed.SetDependency("b", "after,1")
	require.NoError(t, err)
	require.Equal(t, "2024/01/05", taskOf(t, ed, "b").PlannedStart)

	res, on, err := ed.ToggleHoliday(calendar.FromTime(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, "2024/01/03", ed.Settings().HolidayInput)

	assert.Equal(t, "2024/01/05", taskOf(t, ed, "a").PlannedEnd)
	assert.Equal(t, "2024/01/08", taskOf(t, ed, "b").PlannedStart)
	assert.Equal(t, "2024/01/09", taskOf(t, ed, "b").PlannedEnd)
	assert.NotContains(t, res.Propagation.Changed, "c")

	_, ok := ed.Undo()
	require.True(t, ok)
	assert.Equal(t, "2024/01/04", taskOf(t, ed, "a").PlannedEnd)
}

func TestEditor_OffDayMembershipReflow(t *testing.T) {
	ed := twoTasks(t)

	_, err := ed.SetOffDayMembership(1, time.Friday, true)
	require.NoError(t, err)
	assert.True(t, calendar.OffWeekdays(ed.Settings().OffDayRules).Has(time.Friday))
	assert.Equal(t, "2024/01/15", taskOf(t, ed, "a").PlannedEnd)

	_, err = ed.SetOffDayMembership(2, time.Friday, true)
	require.NoError(t, err)
	assert.False(t, ed.Settings().OffDayRules[0].Weekdays.Has(time.Friday), "evicted from rule 1")
	assert.Equal(t, "2024/01/15", taskOf(t, ed, "a").PlannedEnd)

	_, err = ed.SetOffDayMembership(9, time.Friday, true)
	assert.Error(t, err)
}

func TestEditor_SetDateFormatConvertsHistory(t *testing.T) {
	ed := twoTasks(t)
	_, err := ed.SetPlannedDates("a", "2024/01/09", "")
	require.NoError(t, err)

	_, err = ed.SetDateFormat(calendar.FormatDashYMD)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", taskOf(t, ed, "a").PlannedStart)

	_, ok := ed.Undo()
	require.True(t, ok)
	assert.Equal(t, "2024-01-08", taskOf(t, ed, "a").PlannedStart)

	_, err = ed.SetDateFormat("dd.mm.yyyy")
	assert.Error(t, err)
}

func TestEditor_IncludeNonWorkingDays(t *testing.T) {
	ed := twoTasks(t)

	_, err := ed.SetIncludeNonWorkingDays("a", true)
	require.NoError(t, err)
	a := taskOf(t, ed, "a")
	assert.Equal(t, "2024/01/12", a.PlannedEnd)
	assert.Equal(t, 5, *a.PlannedDuration)

	_, err = ed.SetDuration("a", 7)
	require.NoError(t, err)
	assert.Equal(t, "2024/01/14", taskOf(t, ed, "a").PlannedEnd, "weekend counts")
}

func TestEditor_SeparatorWarnings(t *testing.T) {
	ed := newTestEditor(t, testutil.NewTestSeparator("Phase", "s"))

	res, err := ed.ApplyEdits([]RowEdit{{RowID: "s", Collapsed: ptr(true), PlannedStart: ptr("2024/01/01")}})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)

	r, _ := ed.Snapshot().Document.Get("s")
	assert.True(t, r.(domain.Separator).IsCollapsed)
}

func TestEditor_SetColumnsIsUndoable(t *testing.T) {
	ed := twoTasks(t)
	cols := []domain.Column{{ID: domain.ColNo, DisplayName: "#", Visible: true, Width: 20}}

	_, err := ed.SetColumns(cols)
	require.NoError(t, err)
	assert.Equal(t, cols, ed.Snapshot().Columns)

	_, ok := ed.Undo()
	require.True(t, ok)
	assert.Equal(t, domain.DefaultColumns(), ed.Snapshot().Columns)
}

func TestEditor_ImportAppend(t *testing.T) {
	ed := twoTasks(t)
	f := &importer.File{Data: map[string]domain.RowRecord{
		"x": {ID: "x", No: 1, RowType: domain.KindChart, DisplayName: "X"},
		"y": {ID: "y", No: 2, RowType: domain.KindChart, DisplayName: "Y", DependencyExpression: "sameas,1", DependencyTargetID: "x"},
	}}

	ids, res, err := ed.Import(f, true)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 4, res.Snapshot.Document.Len())

	y := taskOf(t, ed, ids[1])
	assert.Equal(t, ids[0], y.DependencyTargetID)
	assert.Equal(t, "sameas,3", y.DependencyExpression, "rewritten against the new row number")
}

func TestEditor_ImportMergeKeepsAbsentFields(t *testing.T) {
	ed := twoTasks(t)
	title := "Merged"
	_, _, err := ed.Import(&importer.File{Title: &title}, false)
	require.NoError(t, err)

	assert.Equal(t, "Merged", ed.Settings().Title)
	assert.Equal(t, 2, ed.Snapshot().Document.Len())
}

func TestEditor_ObserverSeesUseCases(t *testing.T) {
	obs := &recordingObserver{}
	snap := domain.Snapshot{Document: domain.MustDocument(testutil.NewTestTask("A", testutil.WithTaskID("a")))}
	ed := NewEditor(domain.DefaultSettings(), snap, nil, scheduler.Options{}, obs)

	_, err := ed.SetPlannedDates("a", "2024/01/08", "2024/01/09")
	require.NoError(t, err)
	_, err = ed.SetPlannedDates("zzz", "2024/01/08", "2024/01/09")
	require.Error(t, err)
	ed.Undo()

	require.Len(t, obs.events, 3)
	assert.Equal(t, "apply-edits", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.False(t, obs.events[1].Success)
	assert.Equal(t, "undo", obs.events[2].Name)
}

func ptr[T any](v T) *T { return &v }
