package domain

import (
	"fmt"
	"reflect"
)

// Document is an ordered mapping from row id to Row. It is immutable:
// every mutation returns a new Document that shares all untouched row
// values with the receiver, so older Documents stay valid as history.
//
// Row positions (No) always form the contiguous sequence 1..N in order.
type Document struct {
	order []string
	rows  map[string]Row
}

// NewDocument builds a Document from rows in display order and numbers
// them 1..N.
func NewDocument(rows ...Row) (*Document, error) {
	d := &Document{
		order: make([]string, 0, len(rows)),
		rows:  make(map[string]Row, len(rows)),
	}
	for _, r := range rows {
		if _, dup := d.rows[r.RowID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRowID, r.RowID())
		}
		d.order = append(d.order, r.RowID())
		d.rows[r.RowID()] = r
	}
	d.renumber()
	return d, nil
}

// MustDocument is NewDocument for rows known to have unique ids.
func MustDocument(rows ...Row) *Document {
	d, err := NewDocument(rows...)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of rows.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Get looks up a row by id.
func (d *Document) Get(id string) (Row, bool) {
	if d == nil {
		return nil, false
	}
	r, ok := d.rows[id]
	return r, ok
}

// Task looks up a ChartTask by id.
func (d *Document) Task(id string) (ChartTask, error) {
	r, ok := d.Get(id)
	if !ok {
		return ChartTask{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	t, ok := r.(ChartTask)
	if !ok {
		return ChartTask{}, fmt.Errorf("%w: %s", ErrNotChartTask, id)
	}
	return t, nil
}

// At returns the row at zero-based index i.
func (d *Document) At(i int) Row {
	return d.rows[d.order[i]]
}

// IndexOf returns the zero-based index of id, or -1.
func (d *Document) IndexOf(id string) int {
	if r, ok := d.Get(id); ok {
		return r.RowNo() - 1
	}
	return -1
}

// ByNo returns the row at 1-based position no.
func (d *Document) ByNo(no int) (Row, bool) {
	if no < 1 || no > d.Len() {
		return nil, false
	}
	return d.At(no - 1), true
}

// IDs returns a copy of the row ids in display order.
func (d *Document) IDs() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// Rows returns the rows in display order.
func (d *Document) Rows() []Row {
	out := make([]Row, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		out = append(out, d.At(i))
	}
	return out
}

// Tasks returns the ChartTask rows in display order.
func (d *Document) Tasks() []ChartTask {
	var out []ChartTask
	for i := 0; i < d.Len(); i++ {
		if t, ok := d.At(i).(ChartTask); ok {
			out = append(out, t)
		}
	}
	return out
}

// Replace swaps in new values for existing rows, keeping order. Row
// numbers are taken from the receiver, never from the replacements.
func (d *Document) Replace(rows ...Row) (*Document, error) {
	if len(rows) == 0 {
		return d, nil
	}
	next := d.shallowCopy()
	for _, r := range rows {
		old, ok := d.rows[r.RowID()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, r.RowID())
		}
		next.rows[r.RowID()] = r.withNo(old.RowNo())
	}
	return next, nil
}

// InsertBefore inserts rows ahead of anchorID. An empty anchor appends.
func (d *Document) InsertBefore(anchorID string, rows ...Row) (*Document, error) {
	at := d.Len()
	if anchorID != "" {
		at = d.IndexOf(anchorID)
		if at < 0 {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, anchorID)
		}
	}
	next := &Document{
		order: make([]string, 0, d.Len()+len(rows)),
		rows:  make(map[string]Row, d.Len()+len(rows)),
	}
	for id, r := range d.rowsOrEmpty() {
		next.rows[id] = r
	}
	next.order = append(next.order, d.order[:at]...)
	for _, r := range rows {
		if _, dup := next.rows[r.RowID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRowID, r.RowID())
		}
		next.order = append(next.order, r.RowID())
		next.rows[r.RowID()] = r
	}
	next.order = append(next.order, d.order[at:]...)
	next.renumber()
	return next, nil
}

// Remove deletes the given ids. Unknown ids are ignored.
func (d *Document) Remove(ids ...string) *Document {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := &Document{rows: make(map[string]Row, d.Len())}
	for _, id := range d.order {
		if drop[id] {
			continue
		}
		next.order = append(next.order, id)
		next.rows[id] = d.rows[id]
	}
	next.renumber()
	return next
}

// Move relocates ids as a block, in their current relative order, to
// just before beforeID. An empty beforeID moves the block to the end.
func (d *Document) Move(ids []string, beforeID string) (*Document, error) {
	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := d.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, id)
		}
		moving[id] = true
	}
	if beforeID != "" {
		if _, ok := d.Get(beforeID); !ok {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, beforeID)
		}
		if moving[beforeID] {
			return nil, ErrInvalidMove
		}
	}

	var block, rest []string
	for _, id := range d.order {
		if moving[id] {
			block = append(block, id)
		} else {
			rest = append(rest, id)
		}
	}
	order := make([]string, 0, len(d.order))
	placed := false
	for _, id := range rest {
		if id == beforeID {
			order = append(order, block...)
			placed = true
		}
		order = append(order, id)
	}
	if !placed {
		order = append(order, block...)
	}

	next := &Document{order: order, rows: make(map[string]Row, len(d.rows))}
	for id, r := range d.rows {
		next.rows[id] = r
	}
	next.renumber()
	return next, nil
}

// Equal reports structural equality of order and row values.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i := 0; i < d.Len(); i++ {
		if !reflect.DeepEqual(d.At(i), other.At(i)) {
			return false
		}
	}
	return true
}

func (d *Document) shallowCopy() *Document {
	next := &Document{
		order: d.order,
		rows:  make(map[string]Row, len(d.rows)),
	}
	for id, r := range d.rows {
		next.rows[id] = r
	}
	return next
}

func (d *Document) rowsOrEmpty() map[string]Row {
	if d == nil {
		return nil
	}
	return d.rows
}

// renumber assigns No = index+1 to every row whose number is stale.
func (d *Document) renumber() {
	for i, id := range d.order {
		if r := d.rows[id]; r.RowNo() != i+1 {
			d.rows[id] = r.withNo(i + 1)
		}
	}
}
