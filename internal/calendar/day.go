// Package calendar implements working-day arithmetic over an explicit
// holiday set and off-weekday set. Every function is pure: the calendar
// is always passed in, never read from process state.
package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Day is a calendar date counted in days since 1970-01-01.
type Day int32

// Bounds of the representable range. Dates outside it are treated as
// unset.
var (
	MinDay = FromTime(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	MaxDay = FromTime(time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC))
)

const secondsPerDay = 24 * 60 * 60

// FromTime truncates t to its calendar date.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Day(u.Unix() / secondsPerDay)
}

// Time returns the UTC midnight of d.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Weekday reports the day of the week. 1970-01-01 was a Thursday.
func (d Day) Weekday() time.Weekday {
	w := (int(d) + int(time.Thursday)) % 7
	if w < 0 {
		w += 7
	}
	return time.Weekday(w)
}

// InRange reports whether d lies within [MinDay, MaxDay].
func (d Day) InRange() bool {
	return d >= MinDay && d <= MaxDay
}

// Format renders d in the given date format.
func (d Day) Format(f Format) string {
	return d.Time().Format(f.Layout())
}

// Format names one of the user-selectable date formats.
type Format string

const (
	FormatSlashYMD Format = "yyyy/mm/dd"
	FormatDashYMD  Format = "yyyy-mm-dd"
	FormatSlashMDY Format = "mm/dd/yyyy"
	FormatSlashDMY Format = "dd/mm/yyyy"

	DefaultFormat = FormatSlashYMD
)

var layouts = map[Format]string{
	FormatSlashYMD: "2006/01/02",
	FormatDashYMD:  "2006-01-02",
	FormatSlashMDY: "01/02/2006",
	FormatSlashDMY: "02/01/2006",
}

// ParseFormat validates a format name. Empty selects the default.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := layouts[f]; !ok {
		return "", fmt.Errorf("unknown date format %q", s)
	}
	return f, nil
}

// Layout returns the Go time layout for f, falling back to the default.
func (f Format) Layout() string {
	if l, ok := layouts[f]; ok {
		return l
	}
	return layouts[DefaultFormat]
}

type parseKey struct {
	format Format
	raw    string
}

type parseResult struct {
	day Day
	ok  bool
}

// parseCache holds every (format, raw) pair seen by Parse. Inputs are
// immutable strings, so entries never go stale.
var parseCache sync.Map

// Parse reads raw in format f. It fails for empty input, unparseable
// input and dates outside [MinDay, MaxDay].
func Parse(f Format, raw string) (Day, bool) {
	if raw == "" {
		return 0, false
	}
	key := parseKey{format: f, raw: raw}
	if v, ok := parseCache.Load(key); ok {
		r := v.(parseResult)
		return r.day, r.ok
	}
	var r parseResult
	if t, err := time.Parse(f.Layout(), strings.TrimSpace(raw)); err == nil {
		r.day = FromTime(t)
		r.ok = r.day.InRange()
	}
	parseCache.Store(key, r)
	return r.day, r.ok
}

// Normalize re-renders raw in canonical form for f. Invalid or
// out-of-range input yields the empty string.
func Normalize(f Format, raw string) string {
	d, ok := Parse(f, raw)
	if !ok {
		return ""
	}
	return d.Format(f)
}

// Convert re-renders raw from one format into another.
func Convert(from, to Format, raw string) string {
	d, ok := Parse(from, raw)
	if !ok {
		return ""
	}
	return d.Format(to)
}
