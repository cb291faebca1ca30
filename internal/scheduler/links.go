package scheduler

import (
	"github.com/kloir-z/gantt/internal/depexpr"
	"github.com/kloir-z/gantt/internal/domain"
)

// SyncDependencies restores the link invariants after a structural edit:
// a task whose target is gone, is itself, or is no longer a chart task
// loses its dependency, and every remaining expression is rewritten
// against its target's current row number. It returns the ids of tasks
// whose dependency was cleared.
func SyncDependencies(doc *domain.Document) (*domain.Document, []string) {
	var (
		updates []domain.Row
		cleared []string
	)
	for _, t := range doc.Tasks() {
		if !t.HasDependency() {
			continue
		}
		target, ok := doc.Get(t.DependencyTargetID)
		_, isTask := target.(domain.ChartTask)
		if !ok || !isTask || target.RowID() == t.ID {
			updates = append(updates, t.ClearDependency())
			cleared = append(cleared, t.ID)
			continue
		}
		expr := depexpr.Reserialize(doc, t.DependencyExpression, t.DependencyTargetID)
		if expr != t.DependencyExpression {
			t.DependencyExpression = expr
			updates = append(updates, t)
		}
	}
	if len(updates) == 0 {
		return doc, nil
	}
	return mustReplace(doc, updates...), cleared
}
