package calendar

import "time"

// WeekdaySet is a bit set of time.Weekday values.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

func (s WeekdaySet) With(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }

func (s WeekdaySet) Without(d time.Weekday) WeekdaySet { return s &^ (1 << uint(d)) }

// Days lists the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// HolidaySet is an immutable set of holiday dates.
type HolidaySet map[Day]struct{}

// NewHolidaySet builds a set from the given days.
func NewHolidaySet(days ...Day) HolidaySet {
	s := make(HolidaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (h HolidaySet) Has(d Day) bool {
	_, ok := h[d]
	return ok
}

// Calendar is the explicit configuration every arithmetic call takes.
type Calendar struct {
	Holidays    HolidaySet
	OffWeekdays WeekdaySet
}

// Qualifies reports whether d counts as a working day.
func (c Calendar) Qualifies(d Day, includeNonWorking bool) bool {
	if includeNonWorking {
		return true
	}
	if c.OffWeekdays.Has(d.Weekday()) {
		return false
	}
	return !c.Holidays.Has(d)
}

// CountWorkingDays counts qualifying days in [start, end]. It returns 0
// when start is after end.
func CountWorkingDays(start, end Day, cal Calendar, includeNonWorking bool) int {
	if start > end {
		return 0
	}
	if includeNonWorking {
		return int(end-start) + 1
	}
	n := 0
	for d := start; d <= end; d++ {
		if cal.Qualifies(d, false) {
			n++
		}
	}
	return n
}

// Advance walks forward from start until count qualifying days have been
// consumed and returns the day reached. With includeStartDay a qualifying
// start is day 1, so a count of 0 yields the day before start. It fails
// for a negative count or when the walk leaves the valid range.
func Advance(start Day, count int, cal Calendar, includeNonWorking, includeStartDay bool) (Day, bool) {
	return walk(start, count, 1, cal, includeNonWorking, includeStartDay)
}

// Retreat is the backward counterpart of Advance.
func Retreat(end Day, count int, cal Calendar, includeNonWorking, includeStartDay bool) (Day, bool) {
	return walk(end, count, -1, cal, includeNonWorking, includeStartDay)
}

func walk(from Day, count int, step Day, cal Calendar, includeNonWorking, includeStartDay bool) (Day, bool) {
	if count < 0 || !from.InRange() {
		return 0, false
	}
	cursor := from
	if includeStartDay {
		cursor -= step
	}
	for counted := 0; counted < count; {
		cursor += step
		if !cursor.InRange() {
			return 0, false
		}
		if cal.Qualifies(cursor, includeNonWorking) {
			counted++
		}
	}
	if !cursor.InRange() {
		return 0, false
	}
	return cursor, true
}
