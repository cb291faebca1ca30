package formatter

import (
	"fmt"
	"strconv"

	"github.com/kloir-z/gantt/internal/domain"
)

const nameWidth = 32

// RenderRows renders the document as a table over the snapshot's visible
// columns, in column order.
func RenderRows(snap domain.Snapshot) string {
	cols := snap.Columns
	if len(cols) == 0 {
		cols = domain.DefaultColumns()
	}

	var headers []string
	var ids []string
	right := map[int]bool{}
	for _, c := range cols {
		if !c.Visible {
			continue
		}
		if c.ID == domain.ColNo || c.ID == domain.ColPlannedDuration {
			right[len(headers)] = true
		}
		headers = append(headers, c.DisplayName)
		ids = append(ids, c.ID)
	}
	headers = append(headers, "Kind")

	var rows [][]string
	if snap.Document != nil {
		for _, r := range snap.Document.Rows() {
			line := make([]string, 0, len(headers))
			for _, id := range ids {
				line = append(line, cell(r, id))
			}
			rows = append(rows, append(line, KindBadge(r.Kind())))
		}
	}
	return Table{Headers: headers, Rows: rows, RightAlign: right}.Render()
}

func cell(r domain.Row, col string) string {
	if col == domain.ColNo {
		return strconv.Itoa(r.RowNo())
	}
	if col == domain.ColDisplayName {
		name := Truncate(r.Name(), nameWidth)
		if r.Kind() == domain.KindSeparator {
			return Bold(OrDash(name))
		}
		return name
	}

	switch v := r.(type) {
	case domain.ChartTask:
		return taskCell(v, col)
	case domain.Separator:
		switch col {
		case domain.ColPlannedStart:
			return Dim(v.MinStartDate)
		case domain.ColPlannedEnd:
			return Dim(v.MaxEndDate)
		}
	case domain.Event:
		switch col {
		case domain.ColColor:
			return v.Color
		case domain.ColCharge:
			return v.Charge
		case domain.ColPlannedStart:
			if len(v.SubBars) > 0 {
				return Dim(fmt.Sprintf("%d spans", len(v.SubBars)))
			}
		}
	}
	return ""
}

func taskCell(t domain.ChartTask, col string) string {
	switch col {
	case domain.ColColor:
		return t.Color
	case domain.ColPlannedStart:
		return t.PlannedStart
	case domain.ColPlannedEnd:
		return t.PlannedEnd
	case domain.ColPlannedDuration:
		if t.PlannedDuration == nil {
			return ""
		}
		d := strconv.Itoa(*t.PlannedDuration)
		if t.IncludeNonWorkingDays {
			d += "*"
		}
		return d
	case domain.ColActualStart:
		return t.ActualStart
	case domain.ColActualEnd:
		return t.ActualEnd
	case domain.ColDependency:
		return t.DependencyExpression
	case domain.ColCharge:
		return t.Charge
	case domain.ColProgress:
		if pct, ok := ParseProgress(t.Progress); ok {
			return RenderProgress(pct, 8)
		}
		return t.Progress
	}
	return ""
}
