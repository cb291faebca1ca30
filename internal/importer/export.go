package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kloir-z/gantt/internal/domain"
	"gopkg.in/yaml.v3"
)

// Export builds a complete snapshot file from the chart state.
func Export(settings domain.Settings, snap domain.Snapshot) *File {
	format := string(settings.Format())
	colors := make([]ColorEntry, len(settings.Colors))
	for i, c := range settings.Colors {
		colors[i] = ColorEntry{ID: c.ID, Color: c.Color, Alias: c.Alias}
	}
	cols := make([]ColumnEntry, len(snap.Columns))
	for i, c := range snap.Columns {
		cols[i] = ColumnEntry{ColumnID: c.ID, ColumnName: c.DisplayName, Visible: c.Visible, Width: c.Width}
	}
	data := make(map[string]domain.RowRecord, snap.Document.Len())
	for _, rec := range domain.Records(snap.Document) {
		data[rec.ID] = rec
	}

	return &File{
		Title:                 &settings.Title,
		DateFormat:            &format,
		DateRange:             &DateRangeEntry{Start: settings.DateRange.Start, End: settings.DateRange.End},
		Colors:                colors,
		Columns:               cols,
		Data:                  data,
		HolidayInput:          &settings.HolidayInput,
		RegularDaysOffSetting: offDayEntries(settings.OffDayRules),
		WBSWidth:              &settings.WBSWidth,
		CalendarWidth:         &settings.CalendarWidth,
		CellWidth:             &settings.CellWidth,
		ShowYear:              &settings.ShowYear,
	}
}

// Encode renders f as indented JSON or YAML.
func Encode(f *File, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingJSON, "":
		out, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		return append(out, '\n'), nil
	case EncodingYAML:
		var buf bytes.Buffer
		e := yaml.NewEncoder(&buf)
		e.SetIndent(2)
		if err := e.Encode(f); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
		if err := e.Close(); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}
