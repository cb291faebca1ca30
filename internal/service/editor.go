package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/codec"
	"github.com/kloir-z/gantt/internal/depexpr"
	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/history"
	"github.com/kloir-z/gantt/internal/importer"
	"github.com/kloir-z/gantt/internal/scheduler"
)

// Warning reports a row-level problem that did not abort the edit.
type Warning struct {
	RowID   string
	Message string
}

func (w Warning) String() string {
	return w.RowID + ": " + w.Message
}

// Propagation summarizes the dependency walk of one edit.
type Propagation struct {
	// Changed lists the rows whose planned span moved.
	Changed   []string
	Passes    int
	Converged bool
}

func (p *Propagation) add(out scheduler.Outcome) {
	seen := make(map[string]bool, len(p.Changed))
	for _, id := range p.Changed {
		seen[id] = true
	}
	for _, id := range out.Changed {
		if !seen[id] {
			p.Changed = append(p.Changed, id)
		}
	}
	if p.Passes == 0 {
		p.Converged = out.Converged
	} else {
		p.Converged = p.Converged && out.Converged
	}
	p.Passes += out.Passes
}

// Result is the settled chart state after an edit.
type Result struct {
	Snapshot    domain.Snapshot
	Warnings    []Warning
	Propagation Propagation
	// Cleared lists tasks whose dependency was dropped because its target
	// disappeared or stopped being a chart task.
	Cleared []string
}

// RowEdit is one row's worth of grid edits. Nil fields are left alone.
type RowEdit struct {
	RowID                 string
	Name                  *string
	Color                 *string
	Charge                *string
	Progress              *string
	PlannedStart          *string
	PlannedEnd            *string
	Duration              *int
	ActualStart           *string
	ActualEnd             *string
	Dependency            *string
	IncludeNonWorkingDays *bool
	Collapsed             *bool
}

// Editor is the only writer of a chart's rows. Every call runs to
// completion: dates are computed, dependencies resolved and propagated,
// separator ranges rolled up, and (for undoable edits) the previous
// state is pushed onto the history first. Editor is not safe for
// concurrent use.
type Editor struct {
	settings domain.Settings
	current  domain.Snapshot
	history  *history.Manager
	index    *scheduler.Index
	opts     scheduler.Options
	observer UseCaseObserver

	gesture     bool
	gestureMark codec.Fingerprint
}

// NewEditor adopts snap as the current state. The dependency index is
// derived from it and separator ranges are refreshed.
func NewEditor(settings domain.Settings, snap domain.Snapshot, hist *history.Manager, opts scheduler.Options, observers ...UseCaseObserver) *Editor {
	if hist == nil {
		hist = history.New(history.DefaultLimit)
	}
	if snap.Document == nil {
		snap.Document = domain.MustDocument()
	}
	if snap.Columns == nil {
		snap.Columns = domain.DefaultColumns()
	}
	e := &Editor{
		settings: settings,
		history:  hist,
		opts:     opts,
		observer: joinObservers(observers),
	}
	doc, _ := scheduler.SyncDependencies(snap.Document)
	snap.Document = scheduler.Rollup(doc, settings.Dates())
	e.current = snap
	e.index = scheduler.BuildIndex(snap.Document)
	return e
}

// Snapshot returns the current settled state.
func (e *Editor) Snapshot() domain.Snapshot { return e.current }

// Settings returns the chart settings.
func (e *Editor) Settings() domain.Settings { return e.settings }

// History exposes the undo stacks for persistence.
func (e *Editor) History() *history.Manager { return e.history }

func (e *Editor) engine() scheduler.Engine {
	return scheduler.NewEngine(e.settings.Dates(), e.opts)
}

func (e *Editor) dates() calendar.Dates {
	return e.settings.Dates()
}

// edit runs one undoable use case. fn edits a copy of the current
// snapshot; the undo point pushed beforehand is dropped again when fn
// fails or nothing changed.
func (e *Editor) edit(name string, fields map[string]any, fn func(snap *domain.Snapshot, res *Result) error) (res Result, err error) {
	done := track(context.Background(), e.observer, name, fields)
	defer func() {
		fields["changed"] = len(res.Propagation.Changed)
		fields["warnings"] = len(res.Warnings)
		done(err)
	}()

	before := e.current
	if !e.gesture {
		e.history.Push(before)
	}
	next := before
	if err := fn(&next, &res); err != nil {
		if !e.gesture {
			e.history.DiscardLast(1)
		}
		e.index = scheduler.BuildIndex(before.Document)
		return Result{Snapshot: before}, err
	}

	doc, cleared := scheduler.SyncDependencies(next.Document)
	if len(cleared) > 0 {
		res.Cleared = append(res.Cleared, cleared...)
		e.index = scheduler.BuildIndex(doc)
	}
	next.Document = scheduler.Rollup(doc, e.dates())

	if !e.gesture && next.Equal(before) {
		e.history.DiscardLast(1)
	}
	if res.Propagation.Passes == 0 {
		res.Propagation.Converged = true
	}
	e.current = next
	res.Snapshot = next
	return res, nil
}

// SetPlannedDates sets a task's planned span. An empty or invalid date
// unsets that end. When only the start is given the stored duration
// places the end. The task's target and dependents follow.
func (e *Editor) SetPlannedDates(rowID, start, end string) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, PlannedStart: &start, PlannedEnd: &end}})
}

// SetActualDates records the actual span. Actual dates never propagate.
func (e *Editor) SetActualDates(rowID, start, end string) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, ActualStart: &start, ActualEnd: &end}})
}

// SetDependency parses and resolves expression for rowID. An empty or
// unresolvable expression removes the dependency; an unsupported keyword
// leaves it untouched and is reported as a warning.
func (e *Editor) SetDependency(rowID, expression string) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, Dependency: &expression}})
}

// SetDuration re-derives the end from the start and n working days.
func (e *Editor) SetDuration(rowID string, n int) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, Duration: &n}})
}

// SetIncludeNonWorkingDays toggles whether every calendar day counts for
// the task. The start and duration are kept and the end re-derived.
func (e *Editor) SetIncludeNonWorkingDays(rowID string, include bool) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, IncludeNonWorkingDays: &include}})
}

// Rename sets a row's display name.
func (e *Editor) Rename(rowID, name string) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, Name: &name}})
}

// SetSeparatorCollapsed folds or unfolds a separator's section.
func (e *Editor) SetSeparatorCollapsed(rowID string, collapsed bool) (Result, error) {
	return e.ApplyEdits([]RowEdit{{RowID: rowID, Collapsed: &collapsed}})
}

// SetEventBars replaces an event row's sub-bars. Dates are normalized,
// an end before its start is clamped to the start, and bars with neither
// date are dropped with a warning.
func (e *Editor) SetEventBars(rowID string, bars []domain.SubBar) (Result, error) {
	fields := map[string]any{"row": rowID, "bars": len(bars)}
	return e.edit("set-event-bars", fields, func(snap *domain.Snapshot, res *Result) error {
		row, ok := snap.Document.Get(rowID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrRowNotFound, rowID)
		}
		ev, ok := row.(domain.Event)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotEvent, rowID)
		}

		dates := e.dates()
		kept := make([]domain.SubBar, 0, len(bars))
		for i, b := range bars {
			b.Start, b.End = dates.Normalize(b.Start), dates.Normalize(b.End)
			if b.Start == "" && b.End == "" {
				res.Warnings = append(res.Warnings, Warning{RowID: rowID, Message: fmt.Sprintf("bar %d has no valid dates", i+1)})
				continue
			}
			if dates.Before(b.End, b.Start) {
				b.End = b.Start
			}
			kept = append(kept, b)
		}

		doc, err := snap.Document.Replace(ev.WithSubBars(kept))
		if err != nil {
			return err
		}
		snap.Document = doc
		return nil
	})
}

// ApplyEdits applies a batch of row edits as one undoable step. Unknown
// row ids abort the whole batch. Fields that do not apply to a row's
// kind and unsupported dependency keywords become warnings.
func (e *Editor) ApplyEdits(edits []RowEdit) (Result, error) {
	fields := map[string]any{"rows": len(edits)}
	return e.edit("apply-edits", fields, func(snap *domain.Snapshot, res *Result) error {
		for _, ed := range edits {
			if _, ok := snap.Document.Get(ed.RowID); !ok {
				return fmt.Errorf("%w: %s", domain.ErrRowNotFound, ed.RowID)
			}
		}
		doc := snap.Document
		for _, ed := range edits {
			var err error
			doc, err = e.applyRow(doc, ed, res)
			if err != nil {
				return fmt.Errorf("row %s: %w", ed.RowID, err)
			}
		}
		snap.Document = doc
		return nil
	})
}

func (e *Editor) applyRow(doc *domain.Document, ed RowEdit, res *Result) (*domain.Document, error) {
	row, _ := doc.Get(ed.RowID)
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, Warning{RowID: ed.RowID, Message: msg})
	}

	switch v := row.(type) {
	case domain.ChartTask:
		return e.applyTask(doc, v, ed, res, warn)
	case domain.Separator:
		if ed.Name != nil {
			v.DisplayName = *ed.Name
		}
		if ed.Collapsed != nil {
			v.IsCollapsed = *ed.Collapsed
		}
		if ed.hasTaskFields() || ed.Color != nil || ed.Charge != nil {
			warn("separator rows only take a name and a collapsed flag")
		}
		return doc.Replace(v)
	case domain.Event:
		if ed.Name != nil {
			v.DisplayName = *ed.Name
		}
		if ed.Color != nil {
			v.Color = *ed.Color
		}
		if ed.Charge != nil {
			v.Charge = *ed.Charge
		}
		if ed.hasTaskFields() || ed.Collapsed != nil {
			warn("event rows do not take task fields")
		}
		return doc.Replace(v)
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownRowKind, row)
	}
}

func (ed RowEdit) hasTaskFields() bool {
	return ed.PlannedStart != nil || ed.PlannedEnd != nil || ed.Duration != nil ||
		ed.ActualStart != nil || ed.ActualEnd != nil || ed.Dependency != nil ||
		ed.IncludeNonWorkingDays != nil || ed.Progress != nil
}

func (e *Editor) applyTask(doc *domain.Document, t domain.ChartTask, ed RowEdit, res *Result, warn func(string)) (*domain.Document, error) {
	dates := e.dates()
	if ed.Name != nil {
		t.DisplayName = *ed.Name
	}
	if ed.Color != nil {
		t.Color = *ed.Color
	}
	if ed.Charge != nil {
		t.Charge = *ed.Charge
	}
	if ed.Progress != nil {
		t.Progress = *ed.Progress
	}
	if ed.Collapsed != nil {
		warn("only separators can be collapsed")
	}
	if ed.ActualStart != nil {
		t.ActualStart = dates.Normalize(*ed.ActualStart)
	}
	if ed.ActualEnd != nil {
		t.ActualEnd = dates.Normalize(*ed.ActualEnd)
	}

	moved := false
	if ed.IncludeNonWorkingDays != nil && *ed.IncludeNonWorkingDays != t.IncludeNonWorkingDays {
		t.IncludeNonWorkingDays = *ed.IncludeNonWorkingDays
		t = placeFromStart(dates, t, t.PlannedDuration)
		moved = true
	}
	if ed.Duration != nil {
		if *ed.Duration < 0 {
			warn("duration must not be negative")
		} else {
			t = placeFromStart(dates, t, ed.Duration)
			moved = true
		}
	}
	if ed.PlannedStart != nil || ed.PlannedEnd != nil {
		t = setSpan(dates, t, ed.PlannedStart, ed.PlannedEnd)
		moved = true
	}

	doc, err := doc.Replace(t)
	if err != nil {
		return nil, err
	}
	// A new dependency is resolved before the move propagates. The
	// outgoing target stays put.
	attached := false
	if ed.Dependency != nil {
		doc, attached, err = e.applyDependency(doc, t.ID, *ed.Dependency, res, warn)
		if err != nil {
			return nil, err
		}
	}
	if moved && !attached {
		out, err := e.engine().Propagate(doc, e.index, t.ID)
		if err != nil {
			return nil, err
		}
		doc = out.Document
		res.Propagation.add(out)
	}
	return doc, nil
}

// applyDependency resolves text for rowID and re-places the task
// against its new target. attached reports whether the task and its
// dependents were propagated.
func (e *Editor) applyDependency(doc *domain.Document, rowID, text string, res *Result, warn func(string)) (_ *domain.Document, attached bool, _ error) {
	t, err := doc.Task(rowID)
	if err != nil {
		return nil, false, err
	}
	oldTarget := t.DependencyTargetID

	expr, target, err := depexpr.Canonical(doc, rowID, text)
	switch {
	case errors.Is(err, depexpr.ErrUnsupported):
		warn(err.Error())
		return doc, false, nil
	case err != nil:
		t = t.ClearDependency()
	default:
		t.DependencyExpression = expr
		t.DependencyTargetID = target
	}

	doc, err = doc.Replace(t)
	if err != nil {
		return nil, false, err
	}
	e.index.Patch(doc, rowID, oldTarget, t.DependencyTargetID)
	if !t.HasDependency() {
		return doc, false, nil
	}
	out, err := e.engine().Attach(doc, e.index, rowID)
	if err != nil {
		return nil, false, err
	}
	res.Propagation.add(out)
	return out.Document, true, nil
}

// placeFromStart keeps the start and re-derives the end from n.
func placeFromStart(dates calendar.Dates, t domain.ChartTask, n *int) domain.ChartTask {
	if n != nil {
		t.PlannedDuration = domain.IntPtr(*n)
	}
	if !dates.Valid(t.PlannedStart) || t.PlannedDuration == nil {
		return t
	}
	if *t.PlannedDuration <= 0 {
		// Milestone: the task occupies its start day only.
		t.PlannedEnd = t.PlannedStart
		t.PlannedDuration = domain.IntPtr(0)
		return t
	}
	t.PlannedEnd = dates.Advance(t.PlannedStart, t.PlannedDuration, t.IncludeNonWorkingDays, true)
	return t
}

// setSpan applies user-entered planned dates. A start without an end is
// extended by the stored duration; an end before the start is clamped to
// the start.
func setSpan(dates calendar.Dates, t domain.ChartTask, start, end *string) domain.ChartTask {
	if start != nil {
		t.PlannedStart = dates.Normalize(*start)
	}
	if end != nil {
		t.PlannedEnd = dates.Normalize(*end)
	}
	if t.PlannedStart != "" && (end == nil || *end == "") && t.PlannedDuration != nil {
		if *t.PlannedDuration <= 0 {
			t.PlannedEnd = t.PlannedStart
			return t
		}
		t.PlannedEnd = dates.Advance(t.PlannedStart, t.PlannedDuration, t.IncludeNonWorkingDays, true)
	}
	if dates.Before(t.PlannedEnd, t.PlannedStart) {
		t.PlannedEnd = t.PlannedStart
	}
	if span := dates.Span(t.PlannedStart, t.PlannedEnd, t.IncludeNonWorkingDays); span != nil {
		t.PlannedDuration = span
	}
	return t
}

// InsertRows inserts count empty rows of kind before atRowID (appending
// when atRowID is empty) and returns their ids.
func (e *Editor) InsertRows(kind domain.RowKind, atRowID string, count int) ([]string, Result, error) {
	if count < 1 {
		return nil, Result{Snapshot: e.current}, fmt.Errorf("row count must be at least 1, got %d", count)
	}
	ids := make([]string, count)
	fields := map[string]any{"kind": string(kind), "count": count}
	res, err := e.edit("insert-rows", fields, func(snap *domain.Snapshot, _ *Result) error {
		rows := make([]domain.Row, count)
		for i := range rows {
			ids[i] = uuid.New().String()
			r, err := domain.NewRow(kind, ids[i])
			if err != nil {
				return fmt.Errorf("%w: %q", err, kind)
			}
			rows[i] = r
		}
		next, err := snap.Document.InsertBefore(atRowID, rows...)
		if err != nil {
			return err
		}
		e.index = scheduler.BuildIndex(next)
		snap.Document = next
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return ids, res, nil
}

// DeleteRows removes rows. Tasks depending on a removed row lose their
// dependency and are listed in Result.Cleared.
func (e *Editor) DeleteRows(ids []string) (Result, error) {
	fields := map[string]any{"count": len(ids)}
	return e.edit("delete-rows", fields, func(snap *domain.Snapshot, _ *Result) error {
		for _, id := range ids {
			if _, ok := snap.Document.Get(id); !ok {
				return fmt.Errorf("%w: %s", domain.ErrRowNotFound, id)
			}
		}
		e.index.Forget(ids...)
		snap.Document = snap.Document.Remove(ids...)
		return nil
	})
}

// ReorderRows moves ids as a block before targetRowID, or to the end
// when targetRowID is empty. Dependency expressions are re-rendered with
// the targets' new row numbers.
func (e *Editor) ReorderRows(ids []string, targetRowID string) (Result, error) {
	fields := map[string]any{"count": len(ids)}
	return e.edit("reorder-rows", fields, func(snap *domain.Snapshot, _ *Result) error {
		next, err := snap.Document.Move(ids, targetRowID)
		if err != nil {
			return err
		}
		e.index = scheduler.BuildIndex(next)
		snap.Document = next
		return nil
	})
}

// SetColumns replaces the column layout as an undoable step.
func (e *Editor) SetColumns(cols []domain.Column) (Result, error) {
	fields := map[string]any{"columns": len(cols)}
	return e.edit("set-columns", fields, func(snap *domain.Snapshot, _ *Result) error {
		snap.Columns = append([]domain.Column(nil), cols...)
		return nil
	})
}

// SetHolidays replaces the holiday text. Tasks whose span contains a day
// that became or stopped being a holiday keep their start and duration
// and get a new end; dependents follow.
func (e *Editor) SetHolidays(text string) (Result, error) {
	format := e.settings.Format()
	toggled := calendar.ParseHolidayInput(format, e.settings.HolidayInput).Diff(calendar.ParseHolidayInput(format, text))
	next := e.settings
	next.HolidayInput = text

	var affected func(scheduler.Engine) func(domain.ChartTask) bool
	if len(toggled) > 0 {
		affected = func(eng scheduler.Engine) func(domain.ChartTask) bool {
			return eng.SpansAny(toggled)
		}
	}
	return e.reflowCalendar("set-holidays", map[string]any{"toggled_days": len(toggled)}, next, affected)
}

// ToggleHoliday adds or removes one holiday and reports whether day is a
// holiday afterwards.
func (e *Editor) ToggleHoliday(day calendar.Day) (Result, bool, error) {
	text, on := calendar.ToggleHoliday(e.settings.Format(), e.settings.HolidayInput, day)
	res, err := e.SetHolidays(text)
	return res, on, err
}

// SetOffDayMembership adds weekday to, or removes it from, an off-day
// rule. Adding evicts the weekday from every other rule.
func (e *Editor) SetOffDayMembership(ruleID int, weekday time.Weekday, member bool) (Result, error) {
	rules, err := calendar.SetOffDayMembership(e.settings.OffDayRules, ruleID, weekday, member)
	if err != nil {
		return Result{Snapshot: e.current}, err
	}
	fields := map[string]any{"rule": ruleID, "weekday": weekday.String(), "member": member}
	return e.setOffDayRules("set-offday-membership", fields, rules)
}

// SetOffDayRules replaces every off-day rule. A weekday claimed by more
// than one rule stays with the first.
func (e *Editor) SetOffDayRules(rules []calendar.OffDayRule) (Result, error) {
	return e.setOffDayRules("set-offday-rules", map[string]any{"rules": len(rules)}, calendar.NormalizeOffDayRules(rules))
}

func (e *Editor) setOffDayRules(name string, fields map[string]any, rules []calendar.OffDayRule) (Result, error) {
	next := e.settings
	next.OffDayRules = rules

	var affected func(scheduler.Engine) func(domain.ChartTask) bool
	if calendar.OffWeekdays(rules) != calendar.OffWeekdays(e.settings.OffDayRules) {
		affected = func(scheduler.Engine) func(domain.ChartTask) bool { return scheduler.Workdays }
	}
	return e.reflowCalendar(name, fields, next, affected)
}

// reflowCalendar adopts new settings and, when affected is set, reflows
// the plan under the new calendar. The previous rows are pushed onto the
// history; the settings themselves are not part of it.
func (e *Editor) reflowCalendar(name string, fields map[string]any, next domain.Settings, affected func(scheduler.Engine) func(domain.ChartTask) bool) (Result, error) {
	prev := e.settings
	e.settings = next
	res, err := e.edit(name, fields, func(snap *domain.Snapshot, res *Result) error {
		if affected == nil {
			return nil
		}
		eng := e.engine()
		out := eng.Reflow(snap.Document, e.index, affected(eng))
		res.Propagation.add(out)
		snap.Document = out.Document
		return nil
	})
	if err != nil {
		e.settings = prev
	}
	return res, err
}

// SetDateFormat re-renders every stored date, including those held in
// the history, in the new format.
func (e *Editor) SetDateFormat(format calendar.Format) (res Result, err error) {
	from := e.settings.Format()
	done := track(context.Background(), e.observer, "set-date-format",
		map[string]any{"from": string(from), "to": string(format)})
	defer func() { done(err) }()

	if format, err = calendar.ParseFormat(string(format)); err != nil {
		return Result{Snapshot: e.current}, err
	}
	e.convertHistory(from, format)
	e.current.Document = e.current.Document.ConvertDates(from, format)
	e.settings = e.settings.ConvertDates(format)
	if e.gesture {
		if err = e.remarkGesture(); err != nil {
			return Result{Snapshot: e.current}, err
		}
	}
	return Result{Snapshot: e.current}, nil
}

// remarkGesture re-fingerprints the open gesture's undo point after its
// dates were re-rendered.
func (e *Editor) remarkGesture() error {
	past, _ := e.history.Stacks()
	if len(past) == 0 {
		return nil
	}
	mark, err := codec.SnapshotFingerprint(past[len(past)-1])
	if err != nil {
		return fmt.Errorf("fingerprinting snapshot: %w", err)
	}
	e.gestureMark = mark
	return nil
}

// convertHistory re-renders the dates of every undo and redo point.
func (e *Editor) convertHistory(from, to calendar.Format) {
	if from == to {
		return
	}
	past, future := e.history.Stacks()
	for _, stack := range [][]domain.Snapshot{past, future} {
		for i := range stack {
			stack[i].Document = stack[i].Document.ConvertDates(from, to)
		}
	}
	e.history.Restore(past, future)
}

// Undo restores the previous state. It reports false, changing nothing,
// when there is nothing to undo.
func (e *Editor) Undo() (Result, bool) {
	snap, ok := e.history.Undo(e.current)
	return e.adopt("undo", snap, ok), ok
}

// Redo re-applies the most recently undone state.
func (e *Editor) Redo() (Result, bool) {
	snap, ok := e.history.Redo(e.current)
	return e.adopt("redo", snap, ok), ok
}

func (e *Editor) adopt(name string, snap domain.Snapshot, ok bool) Result {
	fields := map[string]any{"applied": ok}
	done := track(context.Background(), e.observer, name, fields)
	if ok {
		e.current = snap
		e.index = scheduler.BuildIndex(snap.Document)
	}
	fields["past"], fields["future"] = e.history.Len()
	done(nil)
	return Result{Snapshot: e.current}
}

// PushSnapshot records the current state as an undo point.
func (e *Editor) PushSnapshot() {
	e.history.Push(e.current)
}

// DiscardLast drops the n most recent undo points without touching the
// current state. It returns how many were dropped.
func (e *Editor) DiscardLast(n int) int {
	return e.history.DiscardLast(n)
}

// BeginGesture opens a multi-step edit that undoes as one step. Edits
// made until EndGesture push no snapshots of their own.
func (e *Editor) BeginGesture() error {
	if e.gesture {
		return errors.New("gesture already in progress")
	}
	mark, err := codec.SnapshotFingerprint(e.current)
	if err != nil {
		return fmt.Errorf("fingerprinting snapshot: %w", err)
	}
	e.history.Push(e.current)
	e.gesture = true
	e.gestureMark = mark
	return nil
}

// EndGesture closes the gesture. When the chart ended up exactly as it
// started, the gesture's undo point is discarded and true is returned.
func (e *Editor) EndGesture() (bool, error) {
	if !e.gesture {
		return false, errors.New("no gesture in progress")
	}
	e.gesture = false
	mark, err := codec.SnapshotFingerprint(e.current)
	if err != nil {
		return false, fmt.Errorf("fingerprinting snapshot: %w", err)
	}
	if mark == e.gestureMark {
		e.history.DiscardLast(1)
		return true, nil
	}
	return false, nil
}

// Import merges a snapshot file into the chart, or appends its rows when
// appendRows is set. It returns the ids of appended rows.
func (e *Editor) Import(f *importer.File, appendRows bool) ([]string, Result, error) {
	var added []string
	mode := "merge"
	if appendRows {
		mode = "append"
	}
	fields := map[string]any{"mode": mode, "rows": len(f.Data)}
	prevSettings := e.settings

	res, err := e.edit("import", fields, func(snap *domain.Snapshot, _ *Result) error {
		if appendRows {
			next, ids, err := importer.Append(snap.Document, e.settings.Format(), f)
			if err != nil {
				return err
			}
			added = ids
			snap.Document = next
			e.index = scheduler.BuildIndex(next)
			return nil
		}
		settings, merged, err := importer.Merge(e.settings, *snap, f)
		if err != nil {
			return err
		}
		e.settings = settings
		*snap = merged
		e.index = scheduler.BuildIndex(merged.Document)
		return nil
	})
	if err != nil {
		e.settings = prevSettings
		return nil, res, err
	}
	if !appendRows {
		// The undo point was pushed in the old format.
		e.convertHistory(prevSettings.Format(), e.settings.Format())
	}
	return added, res, nil
}
