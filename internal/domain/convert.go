package domain

import "github.com/kloir-z/gantt/internal/calendar"

// ConvertDates re-renders every stored date of the document from one
// date format to another. Dates that do not parse under from become
// empty.
func (d *Document) ConvertDates(from, to calendar.Format) *Document {
	if from == to {
		return d
	}
	conv := func(raw string) string { return calendar.Convert(from, to, raw) }

	var updates []Row
	for _, r := range d.Rows() {
		switch v := r.(type) {
		case ChartTask:
			v.PlannedStart, v.PlannedEnd = conv(v.PlannedStart), conv(v.PlannedEnd)
			v.ActualStart, v.ActualEnd = conv(v.ActualStart), conv(v.ActualEnd)
			updates = append(updates, v)
		case Separator:
			v.MinStartDate, v.MaxEndDate = conv(v.MinStartDate), conv(v.MaxEndDate)
			updates = append(updates, v)
		case Event:
			bars := make([]SubBar, len(v.SubBars))
			for i, b := range v.SubBars {
				b.Start, b.End = conv(b.Start), conv(b.End)
				bars[i] = b
			}
			updates = append(updates, v.WithSubBars(bars))
		}
	}
	next, err := d.Replace(updates...)
	if err != nil {
		// Every update comes from d.
		panic(err)
	}
	return next
}

// ConvertDates re-renders the date-valued settings and switches
// DateFormat to to.
func (s Settings) ConvertDates(to calendar.Format) Settings {
	from := s.format()
	if from == to {
		s.DateFormat = to
		return s
	}
	s.HolidayInput = calendar.ConvertHolidayInput(from, to, s.HolidayInput)
	s.DateRange = DateRange{
		Start: calendar.Convert(from, to, s.DateRange.Start),
		End:   calendar.Convert(from, to, s.DateRange.End),
	}
	s.DateFormat = to
	return s
}

// Format returns the active date format, defaulting when unset.
func (s Settings) Format() calendar.Format {
	return s.format()
}
