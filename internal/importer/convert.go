package importer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
)

// Merge applies a validated file to the current chart state: every
// top-level field present in f replaces its counterpart, absent fields
// are kept. Dates inside f are read in the resulting date format. When
// only the date format changes, the existing rows and settings are
// re-rendered in the new format.
func Merge(settings domain.Settings, snap domain.Snapshot, f *File) (domain.Settings, domain.Snapshot, error) {
	if f.DateFormat != nil {
		to, err := calendar.ParseFormat(*f.DateFormat)
		if err != nil {
			return settings, snap, err
		}
		if f.Data == nil {
			snap.Document = snap.Document.ConvertDates(settings.Format(), to)
		}
		settings = settings.ConvertDates(to)
	}

	if f.Title != nil {
		settings.Title = *f.Title
	}
	if f.DateRange != nil {
		settings.DateRange = domain.DateRange{Start: f.DateRange.Start, End: f.DateRange.End}
	}
	if f.Colors != nil {
		colors := make([]domain.ColorInfo, len(f.Colors))
		for i, c := range f.Colors {
			colors[i] = domain.ColorInfo{ID: c.ID, Color: c.Color, Alias: c.Alias}
		}
		settings.Colors = colors
	}
	if f.HolidayInput != nil {
		settings.HolidayInput = *f.HolidayInput
	}
	if f.RegularDaysOffSetting != nil {
		settings.OffDayRules = f.offDayRules()
	}
	if f.WBSWidth != nil {
		settings.WBSWidth = *f.WBSWidth
	}
	if f.CalendarWidth != nil {
		settings.CalendarWidth = *f.CalendarWidth
	}
	if f.CellWidth != nil {
		settings.CellWidth = *f.CellWidth
	}
	if f.ShowYear != nil {
		settings.ShowYear = *f.ShowYear
	}

	if f.Columns != nil {
		snap.Columns = columns(f.Columns)
	}
	if f.Data != nil {
		doc, err := domain.DocumentFromRecords(f.Records())
		if err != nil {
			return settings, snap, fmt.Errorf("building rows: %w", err)
		}
		snap.Document = doc
	}
	return settings, snap, nil
}

// Append adds the file's rows after the existing ones under fresh ids.
// Dependency targets inside the file are remapped to the new ids; targets
// outside the file are dropped. Settings are not touched; row dates are
// converted from the file's date format to format when they differ.
func Append(doc *domain.Document, format calendar.Format, f *File) (*domain.Document, []string, error) {
	recs := f.Records()
	fresh := make(map[string]string, len(recs))
	for _, rec := range recs {
		fresh[rec.ID] = uuid.New().String()
	}

	rows := make([]domain.Row, 0, len(recs))
	for _, rec := range recs {
		rec.ID = fresh[rec.ID]
		if rec.DependencyTargetID != "" {
			if id, ok := fresh[rec.DependencyTargetID]; ok {
				rec.DependencyTargetID = id
			} else {
				rec.DependencyTargetID = ""
				rec.DependencyExpression = ""
			}
		}
		r, err := domain.FromRecord(rec)
		if err != nil {
			return doc, nil, fmt.Errorf("row %s: %w", rec.ID, err)
		}
		rows = append(rows, r)
	}

	added, err := domain.NewDocument(rows...)
	if err != nil {
		return doc, nil, err
	}
	if f.DateFormat != nil {
		from, err := calendar.ParseFormat(*f.DateFormat)
		if err != nil {
			return doc, nil, err
		}
		added = added.ConvertDates(from, format)
	}

	ids := added.IDs()
	next, err := doc.InsertBefore("", added.Rows()...)
	if err != nil {
		return doc, nil, err
	}
	return next, ids, nil
}

func columns(entries []ColumnEntry) []domain.Column {
	out := make([]domain.Column, len(entries))
	for i, c := range entries {
		out[i] = domain.Column{ID: c.ColumnID, DisplayName: c.ColumnName, Visible: c.Visible, Width: c.Width}
	}
	return out
}
