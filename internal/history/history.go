// Package history keeps the bounded undo/redo stacks of snapshots.
package history

import "github.com/kloir-z/gantt/internal/domain"

// DefaultLimit bounds the past stack when no limit is configured.
const DefaultLimit = 30

// Manager holds the past and future stacks. It is not safe for
// concurrent use; the editor serializes every call.
type Manager struct {
	limit  int
	past   []domain.Snapshot
	future []domain.Snapshot
}

// New returns an empty manager. A limit of zero or less selects
// DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Limit returns the past-stack capacity.
func (m *Manager) Limit() int { return m.limit }

// Push records current as the newest past entry and clears the future.
// The oldest entry is evicted once the stack is full.
func (m *Manager) Push(current domain.Snapshot) {
	m.past = append(m.past, current)
	if over := len(m.past) - m.limit; over > 0 {
		m.past = append(m.past[:0:0], m.past[over:]...)
	}
	m.future = nil
}

// Undo pops the newest past entry and returns it, moving current onto
// the future stack. With an empty past it returns current, false.
func (m *Manager) Undo(current domain.Snapshot) (domain.Snapshot, bool) {
	if len(m.past) == 0 {
		return current, false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, current)
	return prev, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current domain.Snapshot) (domain.Snapshot, bool) {
	if len(m.future) == 0 {
		return current, false
	}
	next := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.past = append(m.past, current)
	if over := len(m.past) - m.limit; over > 0 {
		m.past = append(m.past[:0:0], m.past[over:]...)
	}
	return next, true
}

// DiscardLast drops up to n of the newest past entries without touching
// the document. It returns how many were dropped.
func (m *Manager) DiscardLast(n int) int {
	if n > len(m.past) {
		n = len(m.past)
	}
	if n <= 0 {
		return 0
	}
	m.past = m.past[:len(m.past)-n]
	return n
}

func (m *Manager) CanUndo() bool { return len(m.past) > 0 }
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Len returns the sizes of the past and future stacks.
func (m *Manager) Len() (past, future int) {
	return len(m.past), len(m.future)
}

// Stacks returns copies of both stacks, oldest first, for persistence.
func (m *Manager) Stacks() (past, future []domain.Snapshot) {
	return append([]domain.Snapshot(nil), m.past...), append([]domain.Snapshot(nil), m.future...)
}

// Restore replaces both stacks, trimming past to the limit.
func (m *Manager) Restore(past, future []domain.Snapshot) {
	if over := len(past) - m.limit; over > 0 {
		past = past[over:]
	}
	m.past = append([]domain.Snapshot(nil), past...)
	m.future = append([]domain.Snapshot(nil), future...)
}
