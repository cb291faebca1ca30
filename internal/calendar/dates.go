package calendar

// Dates applies the arithmetic to formatted date strings. Empty or
// invalid input always yields empty output.
type Dates struct {
	Format   Format
	Calendar Calendar
}

// Count returns the inclusive qualifying-day count between two formatted
// dates, or 0 when either is unset.
func (d Dates) Count(start, end string, includeNonWorking bool) int {
	s, ok := Parse(d.Format, start)
	if !ok {
		return 0
	}
	e, ok := Parse(d.Format, end)
	if !ok {
		return 0
	}
	return CountWorkingDays(s, e, d.Calendar, includeNonWorking)
}

// Span returns the count as a pointer, nil when the span is incomplete.
func (d Dates) Span(start, end string, includeNonWorking bool) *int {
	if _, ok := Parse(d.Format, start); !ok {
		return nil
	}
	if _, ok := Parse(d.Format, end); !ok {
		return nil
	}
	n := d.Count(start, end, includeNonWorking)
	return &n
}

// Advance is the string form of the package-level Advance. A nil count
// yields empty.
func (d Dates) Advance(start string, count *int, includeNonWorking, includeStartDay bool) string {
	if count == nil {
		return ""
	}
	s, ok := Parse(d.Format, start)
	if !ok {
		return ""
	}
	r, ok := Advance(s, *count, d.Calendar, includeNonWorking, includeStartDay)
	if !ok {
		return ""
	}
	return r.Format(d.Format)
}

// Retreat is the string form of the package-level Retreat.
func (d Dates) Retreat(end string, count *int, includeNonWorking, includeStartDay bool) string {
	if count == nil {
		return ""
	}
	e, ok := Parse(d.Format, end)
	if !ok {
		return ""
	}
	r, ok := Retreat(e, *count, d.Calendar, includeNonWorking, includeStartDay)
	if !ok {
		return ""
	}
	return r.Format(d.Format)
}

// Valid reports whether raw is a usable date in this format.
func (d Dates) Valid(raw string) bool {
	_, ok := Parse(d.Format, raw)
	return ok
}

// Normalize re-renders raw canonically, or returns empty.
func (d Dates) Normalize(raw string) string {
	return Normalize(d.Format, raw)
}

// Before reports a < b for two valid dates. Invalid dates never compare.
func (d Dates) Before(a, b string) bool {
	x, ok := Parse(d.Format, a)
	if !ok {
		return false
	}
	y, ok := Parse(d.Format, b)
	if !ok {
		return false
	}
	return x < y
}
