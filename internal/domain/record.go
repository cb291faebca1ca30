package domain

import "fmt"

// RowRecord is the flat wire form of a Row shared by the snapshot file
// format and the storage codec.
type RowRecord struct {
	ID          string  `json:"id" yaml:"id"`
	No          int     `json:"no" yaml:"no"`
	RowType     RowKind `json:"rowType" yaml:"rowType"`
	DisplayName string  `json:"displayName" yaml:"displayName"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
	Charge      string  `json:"charge,omitempty" yaml:"charge,omitempty"`
	Progress    string  `json:"progress,omitempty" yaml:"progress,omitempty"`

	PlannedStart          string `json:"plannedStart,omitempty" yaml:"plannedStart,omitempty"`
	PlannedEnd            string `json:"plannedEnd,omitempty" yaml:"plannedEnd,omitempty"`
	PlannedDuration       *int   `json:"plannedDuration,omitempty" yaml:"plannedDuration,omitempty"`
	ActualStart           string `json:"actualStart,omitempty" yaml:"actualStart,omitempty"`
	ActualEnd             string `json:"actualEnd,omitempty" yaml:"actualEnd,omitempty"`
	IncludeNonWorkingDays bool   `json:"includeNonWorkingDays,omitempty" yaml:"includeNonWorkingDays,omitempty"`
	DependencyExpression  string `json:"dependencyExpression,omitempty" yaml:"dependencyExpression,omitempty"`
	DependencyTargetID    string `json:"dependencyTargetId,omitempty" yaml:"dependencyTargetId,omitempty"`

	IsCollapsed  bool   `json:"isCollapsed,omitempty" yaml:"isCollapsed,omitempty"`
	MinStartDate string `json:"minStartDate,omitempty" yaml:"minStartDate,omitempty"`
	MaxEndDate   string `json:"maxEndDate,omitempty" yaml:"maxEndDate,omitempty"`

	SubBars []SubBarRecord `json:"subBars,omitempty" yaml:"subBars,omitempty"`
}

// SubBarRecord is the wire form of a SubBar.
type SubBarRecord struct {
	Start     string `json:"start" yaml:"start"`
	End       string `json:"end" yaml:"end"`
	IsPlanned bool   `json:"isPlanned" yaml:"isPlanned"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ToRecord flattens a Row.
func ToRecord(r Row) RowRecord {
	switch v := r.(type) {
	case ChartTask:
		var dur *int
		if v.PlannedDuration != nil {
			dur = IntPtr(*v.PlannedDuration)
		}
		return RowRecord{
			ID: v.ID, No: v.No, RowType: KindChart, DisplayName: v.DisplayName,
			Color: v.Color, Charge: v.Charge, Progress: v.Progress,
			PlannedStart: v.PlannedStart, PlannedEnd: v.PlannedEnd, PlannedDuration: dur,
			ActualStart: v.ActualStart, ActualEnd: v.ActualEnd,
			IncludeNonWorkingDays: v.IncludeNonWorkingDays,
			DependencyExpression:  v.DependencyExpression,
			DependencyTargetID:    v.DependencyTargetID,
		}
	case Separator:
		return RowRecord{
			ID: v.ID, No: v.No, RowType: KindSeparator, DisplayName: v.DisplayName,
			IsCollapsed: v.IsCollapsed, MinStartDate: v.MinStartDate, MaxEndDate: v.MaxEndDate,
		}
	case Event:
		var bars []SubBarRecord
		for _, b := range v.SubBars {
			bars = append(bars, SubBarRecord(b))
		}
		return RowRecord{
			ID: v.ID, No: v.No, RowType: KindEvent, DisplayName: v.DisplayName,
			Color: v.Color, Charge: v.Charge, SubBars: bars,
		}
	default:
		panic(fmt.Sprintf("domain: unknown row variant %T", r))
	}
}

// FromRecord rebuilds a Row from its wire form.
func FromRecord(rec RowRecord) (Row, error) {
	switch rec.RowType {
	case KindChart:
		var dur *int
		if rec.PlannedDuration != nil {
			dur = IntPtr(*rec.PlannedDuration)
		}
		return ChartTask{
			ID: rec.ID, No: rec.No, DisplayName: rec.DisplayName,
			Color: rec.Color, Charge: rec.Charge, Progress: rec.Progress,
			PlannedStart: rec.PlannedStart, PlannedEnd: rec.PlannedEnd, PlannedDuration: dur,
			ActualStart: rec.ActualStart, ActualEnd: rec.ActualEnd,
			IncludeNonWorkingDays: rec.IncludeNonWorkingDays,
			DependencyExpression:  rec.DependencyExpression,
			DependencyTargetID:    rec.DependencyTargetID,
		}, nil
	case KindSeparator:
		return Separator{
			ID: rec.ID, No: rec.No, DisplayName: rec.DisplayName,
			IsCollapsed: rec.IsCollapsed, MinStartDate: rec.MinStartDate, MaxEndDate: rec.MaxEndDate,
		}, nil
	case KindEvent:
		var bars []SubBar
		for _, b := range rec.SubBars {
			bars = append(bars, SubBar(b))
		}
		return Event{
			ID: rec.ID, No: rec.No, DisplayName: rec.DisplayName,
			Color: rec.Color, Charge: rec.Charge, SubBars: bars,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRowKind, rec.RowType)
	}
}

// Records flattens a Document in display order.
func Records(d *Document) []RowRecord {
	out := make([]RowRecord, 0, d.Len())
	for _, r := range d.Rows() {
		out = append(out, ToRecord(r))
	}
	return out
}

// DocumentFromRecords rebuilds a Document; records are taken in slice
// order and renumbered.
func DocumentFromRecords(recs []RowRecord) (*Document, error) {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		r, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", rec.ID, err)
		}
		rows = append(rows, r)
	}
	return NewDocument(rows...)
}
