package domain

import "github.com/kloir-z/gantt/internal/calendar"

// Column describes one grid column in the saved layout.
type Column struct {
	ID          string
	DisplayName string
	Visible     bool
	Width       int
}

// Column ids known to the formatter.
const (
	ColNo              = "no"
	ColDisplayName     = "displayName"
	ColColor           = "color"
	ColPlannedStart    = "plannedStart"
	ColPlannedEnd      = "plannedEnd"
	ColPlannedDuration = "plannedDuration"
	ColActualStart     = "actualStart"
	ColActualEnd       = "actualEnd"
	ColDependency      = "dependency"
	ColCharge          = "charge"
	ColProgress        = "progress"
)

// DefaultColumns is the layout of a fresh chart.
func DefaultColumns() []Column {
	return []Column{
		{ID: ColNo, DisplayName: "No", Visible: true, Width: 35},
		{ID: ColDisplayName, DisplayName: "Name", Visible: true, Width: 150},
		{ID: ColColor, DisplayName: "Color", Visible: false, Width: 50},
		{ID: ColPlannedStart, DisplayName: "Start", Visible: true, Width: 90},
		{ID: ColPlannedEnd, DisplayName: "End", Visible: true, Width: 90},
		{ID: ColPlannedDuration, DisplayName: "Days", Visible: true, Width: 45},
		{ID: ColActualStart, DisplayName: "Actual Start", Visible: false, Width: 90},
		{ID: ColActualEnd, DisplayName: "Actual End", Visible: false, Width: 90},
		{ID: ColDependency, DisplayName: "Dep", Visible: true, Width: 90},
		{ID: ColCharge, DisplayName: "Charge", Visible: true, Width: 80},
		{ID: ColProgress, DisplayName: "Progress", Visible: false, Width: 60},
	}
}

// ColorInfo is one palette entry.
type ColorInfo struct {
	ID    int
	Color string
	Alias string
}

// DateRange bounds the visible calendar.
type DateRange struct {
	Start string
	End   string
}

// Settings holds the chart-wide configuration outside the undo history.
type Settings struct {
	Title         string
	DateRange     DateRange
	Colors        []ColorInfo
	HolidayInput  string
	OffDayRules   []calendar.OffDayRule
	DateFormat    calendar.Format
	WBSWidth      int
	CalendarWidth int
	CellWidth     int
	ShowYear      bool
}

// DefaultSettings returns the settings of a fresh chart.
func DefaultSettings() Settings {
	return Settings{
		DateRange:     DateRange{Start: "2024/01/01", End: "2024/12/31"},
		Colors:        DefaultColors(),
		OffDayRules:   calendar.DefaultOffDayRules(),
		DateFormat:    calendar.DefaultFormat,
		WBSWidth:      550,
		CalendarWidth: 600,
		CellWidth:     21,
	}
}

// DefaultColors is the stock palette.
func DefaultColors() []ColorInfo {
	return []ColorInfo{
		{ID: 1, Color: "#70b0ff"},
		{ID: 2, Color: "#ff8e8e"},
		{ID: 3, Color: "#a8d98a"},
		{ID: 4, Color: "#ffd36e"},
		{ID: 5, Color: "#c8a2ff"},
		{ID: 6, Color: "#9ce3e3"},
	}
}

// Calendar builds the arithmetic configuration from the settings.
func (s Settings) Calendar() calendar.Calendar {
	return calendar.Calendar{
		Holidays:    calendar.ParseHolidayInput(s.format(), s.HolidayInput),
		OffWeekdays: calendar.OffWeekdays(s.OffDayRules),
	}
}

// Dates builds the string-level arithmetic for the settings.
func (s Settings) Dates() calendar.Dates {
	return calendar.Dates{Format: s.format(), Calendar: s.Calendar()}
}

func (s Settings) format() calendar.Format {
	if s.DateFormat == "" {
		return calendar.DefaultFormat
	}
	return s.DateFormat
}

// Snapshot is one immutable (Document, columns) pair kept by the
// history.
type Snapshot struct {
	Document *Document
	Columns  []Column
}

// Equal reports structural equality of two snapshots.
func (s Snapshot) Equal(other Snapshot) bool {
	if !s.Document.Equal(other.Document) || len(s.Columns) != len(other.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}
