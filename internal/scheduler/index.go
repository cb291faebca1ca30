package scheduler

import (
	"sort"

	"github.com/kloir-z/gantt/internal/domain"
)

// Index is the reverse dependency index: target id → ids of the tasks
// whose DependencyTargetID names it. It is derived state only; the
// Document's DependencyTargetID fields stay the source of truth.
type Index struct {
	dependents map[string][]string
}

// BuildIndex derives the index from doc, dependents in display order.
func BuildIndex(doc *domain.Document) *Index {
	ix := &Index{dependents: make(map[string][]string)}
	for _, t := range doc.Tasks() {
		if t.DependencyTargetID != "" {
			ix.dependents[t.DependencyTargetID] = append(ix.dependents[t.DependencyTargetID], t.ID)
		}
	}
	return ix
}

// Dependents returns the ids depending on id. The slice must not be
// modified.
func (ix *Index) Dependents(id string) []string {
	if ix == nil {
		return nil
	}
	return ix.dependents[id]
}

// Len returns the number of edges.
func (ix *Index) Len() int {
	n := 0
	for _, deps := range ix.dependents {
		n += len(deps)
	}
	return n
}

// Patch moves rowID's edge from oldTarget to newTarget, keeping each
// dependent list in display order of doc.
func (ix *Index) Patch(doc *domain.Document, rowID, oldTarget, newTarget string) {
	if oldTarget == newTarget {
		return
	}
	if oldTarget != "" {
		ix.dependents[oldTarget] = without(ix.dependents[oldTarget], rowID)
		if len(ix.dependents[oldTarget]) == 0 {
			delete(ix.dependents, oldTarget)
		}
	}
	if newTarget != "" {
		deps := append(append([]string(nil), ix.dependents[newTarget]...), rowID)
		sort.SliceStable(deps, func(i, j int) bool {
			return doc.IndexOf(deps[i]) < doc.IndexOf(deps[j])
		})
		ix.dependents[newTarget] = deps
	}
}

// Forget drops every edge touching the given ids.
func (ix *Index) Forget(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(ix.dependents, id)
	}
	for target, deps := range ix.dependents {
		kept := deps[:0:0]
		for _, d := range deps {
			if !gone[d] {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(ix.dependents, target)
		} else {
			ix.dependents[target] = kept
		}
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
