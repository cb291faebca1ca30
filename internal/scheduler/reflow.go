package scheduler

import (
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
)

// Reflow re-places the plan after the calendar changed. Every task
// selected by affected keeps its start and duration and gets a new end;
// then every dependency chain is walked forward from its roots so that
// dependents follow their targets under the new calendar.
//
// The engine's Dates must already carry the new calendar.
func (e Engine) Reflow(doc *domain.Document, ix *Index, affected func(domain.ChartTask) bool) Outcome {
	out := Outcome{Document: doc, Passes: 1, Converged: true}
	var changed []string

	for _, t := range doc.Tasks() {
		if affected != nil && !affected(t) {
			continue
		}
		if !e.dates.Valid(t.PlannedStart) {
			continue
		}
		updated, ok := e.spanFrom(t, e.dates.Normalize(t.PlannedStart), e.duration(t))
		if !ok {
			continue
		}
		if !sameSpan(t, updated) {
			out.Document = mustReplace(out.Document, updated)
			changed = append(changed, t.ID)
		}
	}

	p := &pass{engine: e, doc: out.Document, ix: ix, visited: map[string]bool{}}
	for _, t := range out.Document.Tasks() {
		if t.HasDependency() {
			if _, ok := out.Document.Get(t.DependencyTargetID); ok {
				continue
			}
		}
		p.visited[t.ID] = true
		p.forward(t.ID)
	}
	out.Document = p.doc
	out.Changed = mergeChanged(changed, p.changed)
	return out
}

// forward re-places the dependents of id and recurses into them. Targets
// are never moved.
func (p *pass) forward(id string) {
	for _, depID := range p.ix.Dependents(id) {
		if p.visited[depID] {
			continue
		}
		p.visited[depID] = true
		dep, err := p.doc.Task(depID)
		if err != nil || dep.DependencyTargetID != id {
			continue
		}
		anchor, _ := p.doc.Task(id)
		if updated, ok := p.engine.placeForward(dep, anchor); ok {
			p.apply(dep, updated)
		}
		p.forward(depID)
	}
}

// SpansDay selects tasks whose planned span contains day. Tasks that
// count non-working days are unaffected by a holiday and are skipped.
func (e Engine) SpansDay(day calendar.Day) func(domain.ChartTask) bool {
	return func(t domain.ChartTask) bool {
		if t.IncludeNonWorkingDays {
			return false
		}
		start, ok := calendar.Parse(e.dates.Format, t.PlannedStart)
		if !ok {
			return false
		}
		end, ok := calendar.Parse(e.dates.Format, t.PlannedEnd)
		return ok && start <= day && day <= end
	}
}

// SpansAny combines SpansDay over several days.
func (e Engine) SpansAny(days []calendar.Day) func(domain.ChartTask) bool {
	return func(t domain.ChartTask) bool {
		for _, d := range days {
			if e.SpansDay(d)(t) {
				return true
			}
		}
		return false
	}
}

// Workdays selects every task that skips non-working days.
func Workdays(t domain.ChartTask) bool {
	return !t.IncludeNonWorkingDays
}
