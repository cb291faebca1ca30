package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
)

// Bar glyphs, one cell per day.
const (
	glyphPlanned = "█"
	glyphActual  = "▓"
	glyphSection = "━"
	glyphEvent   = "▬"
	glyphOffDay  = "·"
	glyphEmpty   = " "
)

// DefaultGanttDays caps the window when the caller sets no limit.
const DefaultGanttDays = 120

// GanttOptions selects the rendered window. Empty bounds fit the window
// to the rows' dates.
type GanttOptions struct {
	From    string
	To      string
	MaxDays int
	// Shift moves the whole window by this many days.
	Shift int
}

// RenderGantt draws one line per row with one cell per calendar day.
// Planned spans are solid, actual spans shaded, off days and holidays
// dotted. Separators show their rolled-up range.
func RenderGantt(settings domain.Settings, snap domain.Snapshot, opts GanttOptions) string {
	dates := settings.Dates()
	from, to, ok := ganttWindow(dates, settings, snap.Document, opts)
	if !ok {
		return Dim("(no dated rows)") + "\n"
	}

	label := lipgloss.NewStyle().Width(nameWidth + 5)
	var b strings.Builder
	b.WriteString(label.Render(""))
	b.WriteString(monthRuler(from, to))
	b.WriteString("\n")
	b.WriteString(label.Render(""))
	b.WriteString(dayRuler(from, to, dates.Calendar))
	b.WriteString("\n")

	if snap.Document == nil {
		return b.String()
	}
	for _, r := range snap.Document.Rows() {
		name := fmt.Sprintf("%3d  %s", r.RowNo(), Truncate(r.Name(), nameWidth))
		switch v := r.(type) {
		case domain.ChartTask:
			b.WriteString(label.Render(name))
			b.WriteString(taskBar(v, dates, from, to))
		case domain.Separator:
			b.WriteString(label.Render(Bold(name)))
			b.WriteString(spanBar(dates, from, to, StyleSection, glyphSection, span{v.MinStartDate, v.MaxEndDate}))
		case domain.Event:
			b.WriteString(label.Render(name))
			b.WriteString(eventBar(v, dates, from, to))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type span struct{ start, end string }

func (s span) days(dates calendar.Dates) (calendar.Day, calendar.Day, bool) {
	a, ok := calendar.Parse(dates.Format, s.start)
	if !ok {
		return 0, 0, false
	}
	z, ok := calendar.Parse(dates.Format, s.end)
	if !ok {
		z = a
	}
	return a, z, a <= z
}

func ganttWindow(dates calendar.Dates, settings domain.Settings, doc *domain.Document, opts GanttOptions) (calendar.Day, calendar.Day, bool) {
	limit := opts.MaxDays
	if limit <= 0 {
		limit = DefaultGanttDays
	}

	var lo, hi calendar.Day
	found := false
	widen := func(s span) {
		a, z, ok := s.days(dates)
		if !ok {
			return
		}
		if !found || a < lo {
			lo = a
		}
		if !found || z > hi {
			hi = z
		}
		found = true
	}
	if doc != nil {
		for _, r := range doc.Rows() {
			switch v := r.(type) {
			case domain.ChartTask:
				widen(span{v.PlannedStart, v.PlannedEnd})
				widen(span{v.ActualStart, v.ActualEnd})
			case domain.Event:
				for _, sb := range v.SubBars {
					widen(span{sb.Start, sb.End})
				}
			}
		}
	}
	if !found {
		widen(span{settings.DateRange.Start, settings.DateRange.End})
	}
	if d, ok := calendar.Parse(dates.Format, opts.From); ok {
		lo, found = d, true
		if hi < lo {
			hi = lo
		}
	}
	if d, ok := calendar.Parse(dates.Format, opts.To); ok && found && d >= lo {
		hi = d
	}
	if !found {
		return 0, 0, false
	}
	lo += calendar.Day(opts.Shift)
	hi += calendar.Day(opts.Shift)
	if int(hi-lo)+1 > limit {
		hi = lo + calendar.Day(limit-1)
	}
	return lo, hi, true
}

func monthRuler(from, to calendar.Day) string {
	var b strings.Builder
	for d := from; d <= to; {
		t := d.Time()
		next := calendar.FromTime(t.AddDate(0, 1, 1-t.Day()))
		if next > to+1 {
			next = to + 1
		}
		width := int(next - d)
		text := t.Format("Jan 2006")
		if width < len(text) {
			text = t.Format("Jan")
		}
		text = Truncate(text, width)
		b.WriteString(StyleHeader.Render(text))
		b.WriteString(strings.Repeat(" ", width-lipgloss.Width(text)))
		d = next
	}
	return b.String()
}

func dayRuler(from, to calendar.Day, cal calendar.Calendar) string {
	var b strings.Builder
	for d := from; d <= to; d++ {
		digit := fmt.Sprint(d.Time().Day() % 10)
		if cal.Qualifies(d, false) {
			b.WriteString(digit)
		} else {
			b.WriteString(StyleDim.Render(digit))
		}
	}
	return b.String()
}

func taskBar(t domain.ChartTask, dates calendar.Dates, from, to calendar.Day) string {
	style := RowColor(t.Color, StylePlanned)
	pa, pz, planned := span{t.PlannedStart, t.PlannedEnd}.days(dates)
	aa, az, actual := span{t.ActualStart, t.ActualEnd}.days(dates)

	var b strings.Builder
	for d := from; d <= to; d++ {
		working := dates.Calendar.Qualifies(d, t.IncludeNonWorkingDays)
		switch {
		case actual && d >= aa && d <= az:
			b.WriteString(StyleActual.Render(glyphActual))
		case planned && d >= pa && d <= pz && working:
			b.WriteString(style.Render(glyphPlanned))
		case !dates.Calendar.Qualifies(d, false):
			b.WriteString(StyleOffDay.Render(glyphOffDay))
		default:
			b.WriteString(glyphEmpty)
		}
	}
	return b.String()
}

func eventBar(e domain.Event, dates calendar.Dates, from, to calendar.Day) string {
	var planned, actual []span
	for _, sb := range e.SubBars {
		if sb.IsPlanned {
			planned = append(planned, span{sb.Start, sb.End})
		} else {
			actual = append(actual, span{sb.Start, sb.End})
		}
	}
	style := RowColor(e.Color, StyleEvent)

	var b strings.Builder
	for d := from; d <= to; d++ {
		switch {
		case covers(actual, dates, d):
			b.WriteString(StyleActual.Render(glyphActual))
		case covers(planned, dates, d):
			b.WriteString(style.Render(glyphEvent))
		case !dates.Calendar.Qualifies(d, false):
			b.WriteString(StyleOffDay.Render(glyphOffDay))
		default:
			b.WriteString(glyphEmpty)
		}
	}
	return b.String()
}

func spanBar(dates calendar.Dates, from, to calendar.Day, style lipgloss.Style, glyph string, spans ...span) string {
	var b strings.Builder
	for d := from; d <= to; d++ {
		if covers(spans, dates, d) {
			b.WriteString(style.Render(glyph))
		} else {
			b.WriteString(glyphEmpty)
		}
	}
	return b.String()
}

func covers(spans []span, dates calendar.Dates, d calendar.Day) bool {
	for _, s := range spans {
		if a, z, ok := s.days(dates); ok && d >= a && d <= z {
			return true
		}
	}
	return false
}
