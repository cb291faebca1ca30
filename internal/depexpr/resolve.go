package depexpr

import "github.com/kloir-z/gantt/internal/domain"

// Resolve finds the chart task that rowID's expression points at. It
// fails when the reference runs off the document, lands on a row that is
// not a chart task, or lands on the referring row itself.
func Resolve(doc *domain.Document, rowID string, e Expression) (string, bool) {
	var target domain.Row
	if e.Ref.Relative {
		target = walkTasks(doc, rowID, e.Ref.Value)
	} else if r, ok := doc.ByNo(e.Ref.Value); ok {
		target = r
	}
	if target == nil || target.RowID() == rowID {
		return "", false
	}
	if _, ok := target.(domain.ChartTask); !ok {
		return "", false
	}
	return target.RowID(), true
}

// walkTasks steps |n| chart-task rows away from rowID in the direction of
// n's sign.
func walkTasks(doc *domain.Document, rowID string, n int) domain.Row {
	idx := doc.IndexOf(rowID)
	if idx < 0 || n == 0 {
		return nil
	}
	step, remaining := 1, n
	if n < 0 {
		step, remaining = -1, -n
	}
	for i := idx + step; i >= 0 && i < doc.Len(); i += step {
		r := doc.At(i)
		if _, ok := r.(domain.ChartTask); !ok {
			continue
		}
		remaining--
		if remaining == 0 {
			return r
		}
	}
	return nil
}

// Canonical parses text for rowID, resolves it and returns the absolute
// form together with the target id. ErrEmpty and ErrUnsupported pass
// through; every other failure reports ErrMalformed.
func Canonical(doc *domain.Document, rowID, text string) (expr string, targetID string, err error) {
	e, err := Parse(text)
	if err != nil {
		return "", "", err
	}
	targetID, ok := Resolve(doc, rowID, e)
	if !ok {
		return "", "", ErrMalformed
	}
	target, _ := doc.Get(targetID)
	return e.Format(target.RowNo()), targetID, nil
}

// Reserialize rewrites a stored expression against the target's current
// row number. Expressions that no longer parse are returned unchanged.
func Reserialize(doc *domain.Document, text, targetID string) string {
	e, err := Parse(text)
	if err != nil {
		return text
	}
	target, ok := doc.Get(targetID)
	if !ok {
		return text
	}
	return e.Format(target.RowNo())
}
