package importer

import (
	"sort"
	"strconv"
	"time"

	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
)

// File is the snapshot file: a whole chart, or any subset of its
// top-level fields. Pointer and nil-able fields distinguish "absent"
// from "zero" for merge imports.
type File struct {
	Title                 *string                     `json:"title,omitempty" yaml:"title,omitempty"`
	DateFormat            *string                     `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`
	DateRange             *DateRangeEntry             `json:"dateRange,omitempty" yaml:"dateRange,omitempty"`
	Colors                []ColorEntry                `json:"colors,omitempty" yaml:"colors,omitempty"`
	Columns               []ColumnEntry               `json:"columns,omitempty" yaml:"columns,omitempty"`
	Data                  map[string]domain.RowRecord `json:"data,omitempty" yaml:"data,omitempty"`
	HolidayInput          *string                     `json:"holidayInput,omitempty" yaml:"holidayInput,omitempty"`
	RegularDaysOffSetting map[string]OffDayEntry      `json:"regularDaysOffSetting,omitempty" yaml:"regularDaysOffSetting,omitempty"`
	WBSWidth              *int                        `json:"wbsWidth,omitempty" yaml:"wbsWidth,omitempty"`
	CalendarWidth         *int                        `json:"calendarWidth,omitempty" yaml:"calendarWidth,omitempty"`
	CellWidth             *int                        `json:"cellWidth,omitempty" yaml:"cellWidth,omitempty"`
	ShowYear              *bool                       `json:"showYear,omitempty" yaml:"showYear,omitempty"`
}

type DateRangeEntry struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type ColorEntry struct {
	ID    int    `json:"id" yaml:"id"`
	Color string `json:"color" yaml:"color"`
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

type ColumnEntry struct {
	ColumnID   string `json:"columnId" yaml:"columnId"`
	ColumnName string `json:"columnName,omitempty" yaml:"columnName,omitempty"`
	Visible    bool   `json:"visible" yaml:"visible"`
	Width      int    `json:"width,omitempty" yaml:"width,omitempty"`
}

// OffDayEntry is one off-day rule; Days holds weekday numbers, Sunday 0.
type OffDayEntry struct {
	ID    int    `json:"id" yaml:"id"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Days  []int  `json:"days" yaml:"days"`
}

// Records returns the file's rows ordered by "no", ties broken by id.
func (f *File) Records() []domain.RowRecord {
	recs := make([]domain.RowRecord, 0, len(f.Data))
	for _, rec := range f.Data {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].No != recs[j].No {
			return recs[i].No < recs[j].No
		}
		return recs[i].ID < recs[j].ID
	})
	return recs
}

func (f *File) offDayRules() []calendar.OffDayRule {
	rules := make([]calendar.OffDayRule, 0, len(f.RegularDaysOffSetting))
	for _, e := range f.RegularDaysOffSetting {
		var set calendar.WeekdaySet
		for _, d := range e.Days {
			set = set.With(time.Weekday(d))
		}
		rules = append(rules, calendar.OffDayRule{ID: e.ID, Color: e.Color, Weekdays: set})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return calendar.NormalizeOffDayRules(rules)
}

func offDayEntries(rules []calendar.OffDayRule) map[string]OffDayEntry {
	out := make(map[string]OffDayEntry, len(rules))
	for _, r := range rules {
		days := []int{}
		for _, d := range r.Weekdays.Days() {
			days = append(days, int(d))
		}
		out[strconv.Itoa(r.ID)] = OffDayEntry{ID: r.ID, Color: r.Color, Days: days}
	}
	return out
}
