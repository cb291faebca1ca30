package calendar

import (
	"fmt"
	"strings"
	"time"
)

// OffDayRule groups weekdays that are regularly off. A weekday belongs to
// at most one rule.
type OffDayRule struct {
	ID       int
	Color    string
	Weekdays WeekdaySet
}

// DefaultOffDayRules marks Saturday and Sunday off, each in its own rule.
func DefaultOffDayRules() []OffDayRule {
	return []OffDayRule{
		{ID: 1, Color: "#d9e6ff", Weekdays: NewWeekdaySet(time.Saturday)},
		{ID: 2, Color: "#ffdcdc", Weekdays: NewWeekdaySet(time.Sunday)},
	}
}

// OffWeekdays returns the union of every rule's weekdays.
func OffWeekdays(rules []OffDayRule) WeekdaySet {
	var s WeekdaySet
	for _, r := range rules {
		s |= r.Weekdays
	}
	return s
}

// SetOffDayMembership adds weekday to (or removes it from) the rule with
// ruleID. Adding first evicts the weekday from every other rule. The
// input slice is not modified.
func SetOffDayMembership(rules []OffDayRule, ruleID int, weekday time.Weekday, member bool) ([]OffDayRule, error) {
	idx := -1
	for i, r := range rules {
		if r.ID == ruleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("off-day rule %d not found", ruleID)
	}
	out := make([]OffDayRule, len(rules))
	copy(out, rules)
	if !member {
		out[idx].Weekdays = out[idx].Weekdays.Without(weekday)
		return out, nil
	}
	for i := range out {
		if i != idx {
			out[i].Weekdays = out[i].Weekdays.Without(weekday)
		}
	}
	out[idx].Weekdays = out[idx].Weekdays.With(weekday)
	return out, nil
}

// NormalizeOffDayRules enforces the one-rule-per-weekday invariant on
// imported data: the first rule claiming a weekday keeps it.
func NormalizeOffDayRules(rules []OffDayRule) []OffDayRule {
	out := make([]OffDayRule, len(rules))
	var claimed WeekdaySet
	for i, r := range rules {
		out[i] = r
		out[i].Weekdays = r.Weekdays &^ claimed
		claimed |= out[i].Weekdays
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekday accepts English weekday names or their three-letter
// abbreviations, in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) >= 3 {
		if d, ok := weekdayNames[key[:3]]; ok && strings.HasPrefix(strings.ToLower(d.String()), key) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
