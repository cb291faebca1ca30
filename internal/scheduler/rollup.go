package scheduler

import (
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
)

// Rollup recomputes every separator's MinStartDate and MaxEndDate over
// the rows between it and the next separator: chart tasks contribute
// planned and actual dates, events their sub-bars. A group without any
// valid date gets empty bounds. Rows above the first separator belong to
// no group.
func Rollup(doc *domain.Document, dates calendar.Dates) *domain.Document {
	var (
		updates []domain.Row
		current *domain.Separator
		r       bounds
	)
	flush := func() {
		if current == nil {
			return
		}
		minStart, maxEnd := r.render(dates.Format)
		if current.MinStartDate != minStart || current.MaxEndDate != maxEnd {
			s := *current
			s.MinStartDate = minStart
			s.MaxEndDate = maxEnd
			updates = append(updates, s)
		}
	}

	for _, row := range doc.Rows() {
		switch v := row.(type) {
		case domain.Separator:
			flush()
			sep := v
			current = &sep
			r = bounds{}
		case domain.ChartTask:
			r.add(dates, v.PlannedStart, v.PlannedEnd, v.ActualStart, v.ActualEnd)
		case domain.Event:
			for _, b := range v.SubBars {
				r.add(dates, b.Start, b.End)
			}
		}
	}
	flush()

	if len(updates) == 0 {
		return doc
	}
	return mustReplace(doc, updates...)
}

type bounds struct {
	min, max calendar.Day
	ok       bool
}

// add widens the bounds by every valid date in raws.
func (b *bounds) add(dates calendar.Dates, raws ...string) {
	for _, raw := range raws {
		d, ok := calendar.Parse(dates.Format, raw)
		if !ok {
			continue
		}
		if !b.ok || d < b.min {
			b.min = d
		}
		if !b.ok || d > b.max {
			b.max = d
		}
		b.ok = true
	}
}

func (b bounds) render(f calendar.Format) (string, string) {
	if !b.ok {
		return "", ""
	}
	return b.min.Format(f), b.max.Format(f)
}
