package scheduler

import (
	"fmt"

	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/depexpr"
	"github.com/kloir-z/gantt/internal/domain"
)

// Mode selects how many propagation passes run per edit.
type Mode string

const (
	// ModeSinglePass walks the graph once. A cycle can leave edges stale.
	ModeSinglePass Mode = "single_pass"
	// ModeFixedPoint repeats passes until nothing changes or MaxPasses is
	// reached.
	ModeFixedPoint Mode = "fixed_point"

	DefaultMaxPasses = 8
)

// ParseMode validates a mode name. Empty selects ModeFixedPoint.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFixedPoint, nil
	case ModeSinglePass, ModeFixedPoint:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown propagation mode %q", s)
	}
}

// Options configures the Engine.
type Options struct {
	Mode      Mode
	MaxPasses int
}

// Engine keeps dependent tasks' planned dates consistent after edits.
type Engine struct {
	dates calendar.Dates
	opts  Options
}

// NewEngine builds an engine over the given date arithmetic.
func NewEngine(dates calendar.Dates, opts Options) Engine {
	if opts.Mode == "" {
		opts.Mode = ModeFixedPoint
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultMaxPasses
	}
	return Engine{dates: dates, opts: opts}
}

// Outcome describes one propagation run.
type Outcome struct {
	Document *domain.Document
	// Changed lists rows whose planned span moved, in first-touched order.
	Changed   []string
	Passes    int
	Converged bool
}

// Propagate runs after rowID's planned dates changed: its target is
// re-derived backward from its new start and its dependents are
// re-placed forward, transitively in both directions.
func (e Engine) Propagate(doc *domain.Document, ix *Index, rowID string) (Outcome, error) {
	if _, err := doc.Task(rowID); err != nil {
		return Outcome{}, err
	}
	return e.run(doc, ix, rowID, false), nil
}

// Attach runs after rowID's dependency changed: the task is placed
// relative to its target first, then its own dependents follow. The
// target itself is left where it is.
func (e Engine) Attach(doc *domain.Document, ix *Index, rowID string) (Outcome, error) {
	t, err := doc.Task(rowID)
	if err != nil {
		return Outcome{}, err
	}
	if !t.HasDependency() {
		return e.run(doc, ix, rowID, false), nil
	}
	target, err := doc.Task(t.DependencyTargetID)
	if err != nil {
		return Outcome{}, err
	}
	var changed []string
	if placed, ok := e.placeForward(t, target); ok && !sameSpan(placed, t) {
		doc = mustReplace(doc, placed)
		changed = append(changed, rowID)
	}
	out := e.run(doc, ix, rowID, true)
	out.Changed = mergeChanged(changed, out.Changed)
	return out, nil
}

func (e Engine) run(doc *domain.Document, ix *Index, seed string, skipParent bool) Outcome {
	out := Outcome{Document: doc}
	passes := 1
	if e.opts.Mode == ModeFixedPoint {
		passes = e.opts.MaxPasses
	}
	for i := 0; i < passes; i++ {
		p := &pass{engine: e, doc: out.Document, ix: ix, visited: map[string]bool{seed: true}}
		if skipParent {
			if t, err := out.Document.Task(seed); err == nil && t.HasDependency() {
				p.visited[t.DependencyTargetID] = true
			}
		}
		p.visit(seed)
		out.Document = p.doc
		out.Passes++
		out.Changed = mergeChanged(out.Changed, p.changed)
		if len(p.changed) == 0 {
			out.Converged = true
			return out
		}
	}
	out.Converged = e.opts.Mode == ModeSinglePass
	return out
}

type pass struct {
	engine  Engine
	doc     *domain.Document
	ix      *Index
	visited map[string]bool
	changed []string
}

func (p *pass) visit(id string) {
	row, err := p.doc.Task(id)
	if err != nil {
		return
	}

	if row.HasDependency() && !p.visited[row.DependencyTargetID] {
		p.visited[row.DependencyTargetID] = true
		if target, err := p.doc.Task(row.DependencyTargetID); err == nil {
			if updated, ok := p.engine.placeBackward(target, row); ok {
				p.apply(target, updated)
			}
			p.visit(target.ID)
		}
	}

	for _, depID := range p.ix.Dependents(id) {
		if p.visited[depID] {
			continue
		}
		p.visited[depID] = true
		dep, err := p.doc.Task(depID)
		if err != nil || dep.DependencyTargetID != id {
			continue
		}
		// Re-read the anchor: step 1 may have replaced it.
		anchor, _ := p.doc.Task(id)
		if updated, ok := p.engine.placeForward(dep, anchor); ok {
			p.apply(dep, updated)
		}
		p.visit(depID)
	}
}

func (p *pass) apply(before, after domain.ChartTask) {
	if sameSpan(before, after) {
		return
	}
	p.doc = mustReplace(p.doc, after)
	p.changed = append(p.changed, after.ID)
}

// placeForward computes dep's span from its target: after the target's
// end for After, on the target's start for SameAs.
func (e Engine) placeForward(dep, target domain.ChartTask) (domain.ChartTask, bool) {
	expr, err := depexpr.Parse(dep.DependencyExpression)
	if err != nil {
		return dep, false
	}
	var start string
	switch expr.Keyword {
	case depexpr.After:
		start = e.dates.Advance(target.PlannedEnd, &expr.Offset, dep.IncludeNonWorkingDays, false)
	case depexpr.SameAs:
		start = e.dates.Normalize(target.PlannedStart)
	}
	if start == "" {
		return dep, false
	}
	return e.spanFrom(dep, start, e.duration(dep))
}

// placeBackward re-derives target's span so that child, which depends on
// it, keeps its relation at child's current start.
func (e Engine) placeBackward(target, child domain.ChartTask) (domain.ChartTask, bool) {
	expr, err := depexpr.Parse(child.DependencyExpression)
	if err != nil || !e.dates.Valid(child.PlannedStart) {
		return target, false
	}
	dur := e.duration(target)
	switch expr.Keyword {
	case depexpr.After:
		end := e.dates.Retreat(child.PlannedStart, &expr.Offset, child.IncludeNonWorkingDays, false)
		if end == "" {
			return target, false
		}
		return e.spanTo(target, end, dur)
	case depexpr.SameAs:
		return e.spanFrom(target, e.dates.Normalize(child.PlannedStart), dur)
	}
	return target, false
}

// duration is the stored duration, else the current span, else one day.
func (e Engine) duration(t domain.ChartTask) int {
	fallback := 1
	if span := e.dates.Span(t.PlannedStart, t.PlannedEnd, t.IncludeNonWorkingDays); span != nil {
		fallback = *span
	}
	return t.Duration(fallback)
}

// spanFrom places t at start with an end dur qualifying days later. A
// task of zero duration is a milestone: its end is pinned to its start
// and the duration stays zero.
func (e Engine) spanFrom(t domain.ChartTask, start string, dur int) (domain.ChartTask, bool) {
	if start == "" {
		return t, false
	}
	if dur <= 0 {
		return milestone(t, start), true
	}
	end := e.dates.Advance(start, &dur, t.IncludeNonWorkingDays, true)
	if end == "" {
		return t, false
	}
	return e.withSpan(t, start, end), true
}

// spanTo is spanFrom walking backward from end.
func (e Engine) spanTo(t domain.ChartTask, end string, dur int) (domain.ChartTask, bool) {
	if dur <= 0 {
		return milestone(t, end), true
	}
	start := e.dates.Retreat(end, &dur, t.IncludeNonWorkingDays, true)
	if start == "" {
		return t, false
	}
	return e.withSpan(t, start, end), true
}

func milestone(t domain.ChartTask, day string) domain.ChartTask {
	t.PlannedStart = day
	t.PlannedEnd = day
	t.PlannedDuration = domain.IntPtr(0)
	return t
}

func (e Engine) withSpan(t domain.ChartTask, start, end string) domain.ChartTask {
	t.PlannedStart = start
	t.PlannedEnd = end
	t.PlannedDuration = e.dates.Span(start, end, t.IncludeNonWorkingDays)
	return t
}

func sameSpan(a, b domain.ChartTask) bool {
	if a.PlannedStart != b.PlannedStart || a.PlannedEnd != b.PlannedEnd {
		return false
	}
	if (a.PlannedDuration == nil) != (b.PlannedDuration == nil) {
		return false
	}
	return a.PlannedDuration == nil || *a.PlannedDuration == *b.PlannedDuration
}

func mustReplace(doc *domain.Document, rows ...domain.Row) *domain.Document {
	next, err := doc.Replace(rows...)
	if err != nil {
		// Rows come from doc itself, so the ids are always present.
		panic(err)
	}
	return next
}

func mergeChanged(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
