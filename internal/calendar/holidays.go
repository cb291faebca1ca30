package calendar

import (
	"sort"
	"strings"
)

// ParseHolidayInput reads newline-delimited holiday text. The first
// whitespace-separated field of each line must be a date in format f;
// anything after it (a holiday name, say) is ignored, as are lines that
// do not start with a valid date.
func ParseHolidayInput(f Format, text string) HolidaySet {
	set := make(HolidaySet)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if d, ok := Parse(f, fields[0]); ok {
			set[d] = struct{}{}
		}
	}
	return set
}

// ToggleHoliday adds day to the holiday text when absent, or removes
// every line naming it when present. It reports whether day is a
// holiday afterwards.
func ToggleHoliday(f Format, text string, day Day) (string, bool) {
	var kept []string
	removed := false
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			if d, ok := Parse(f, fields[0]); ok && d == day {
				removed = true
				continue
			}
		}
		kept = append(kept, line)
	}
	if removed {
		return strings.TrimRight(strings.Join(kept, "\n"), "\n"), false
	}
	text = strings.TrimRight(text, "\n")
	if text != "" {
		text += "\n"
	}
	return text + day.Format(f), true
}

// ConvertHolidayInput rewrites every date-leading line from one format
// into another, keeping trailing names and non-date lines intact.
func ConvertHolidayInput(from, to Format, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		d, ok := Parse(from, fields[0])
		if !ok {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		lines[i] = d.Format(to)
		if rest != "" {
			lines[i] += " " + rest
		}
	}
	return strings.Join(lines, "\n")
}

// Sorted returns the holidays in ascending order.
func (h HolidaySet) Sorted() []Day {
	out := make([]Day, 0, len(h))
	for d := range h {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Diff returns the days present in exactly one of h and other.
func (h HolidaySet) Diff(other HolidaySet) []Day {
	var out []Day
	for d := range h {
		if !other.Has(d) {
			out = append(out, d)
		}
	}
	for d := range other {
		if !h.Has(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
