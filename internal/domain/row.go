package domain

// RowKind discriminates the Row variants.
type RowKind string

const (
	KindChart     RowKind = "Chart"
	KindSeparator RowKind = "Separator"
	KindEvent     RowKind = "Event"
)

// ValidRowKinds is the canonical set of accepted row kinds.
var ValidRowKinds = map[RowKind]bool{
	KindChart: true, KindSeparator: true, KindEvent: true,
}

// Row is the sealed sum type over ChartTask, Separator and Event. Values
// are immutable: every edit produces a new value.
type Row interface {
	RowID() string
	RowNo() int
	Name() string
	Kind() RowKind

	withNo(no int) Row
}

// ChartTask is the schedulable row with planned and actual spans.
type ChartTask struct {
	ID          string
	No          int
	DisplayName string
	Color       string
	Charge      string
	Progress    string

	PlannedStart    string
	PlannedEnd      string
	PlannedDuration *int
	ActualStart     string
	ActualEnd       string

	// IncludeNonWorkingDays makes every calendar day count for this task.
	IncludeNonWorkingDays bool

	DependencyExpression string
	DependencyTargetID   string
}

func (t ChartTask) RowID() string { return t.ID }
func (t ChartTask) RowNo() int    { return t.No }
func (t ChartTask) Name() string  { return t.DisplayName }
func (t ChartTask) Kind() RowKind { return KindChart }

func (t ChartTask) withNo(no int) Row {
	t.No = no
	return t
}

// HasDependency reports whether the task is scheduled relative to another.
func (t ChartTask) HasDependency() bool { return t.DependencyTargetID != "" }

// ClearDependency drops both the expression and its resolved target.
func (t ChartTask) ClearDependency() ChartTask {
	t.DependencyExpression = ""
	t.DependencyTargetID = ""
	return t
}

// Duration returns the planned duration or fallback when unset.
func (t ChartTask) Duration(fallback int) int {
	if t.PlannedDuration == nil {
		return fallback
	}
	return *t.PlannedDuration
}

// Separator groups the rows that follow it, up to the next separator.
type Separator struct {
	ID          string
	No          int
	DisplayName string
	IsCollapsed bool

	// Derived rollup of the section's dates.
	MinStartDate string
	MaxEndDate   string
}

func (s Separator) RowID() string { return s.ID }
func (s Separator) RowNo() int    { return s.No }
func (s Separator) Name() string  { return s.DisplayName }
func (s Separator) Kind() RowKind { return KindSeparator }

func (s Separator) withNo(no int) Row {
	s.No = no
	return s
}

// SubBar is one span drawn on an Event row.
type SubBar struct {
	Start     string
	End       string
	IsPlanned bool
	Label     string
}

// Event carries free-standing spans. It never takes part in dependencies.
type Event struct {
	ID          string
	No          int
	DisplayName string
	Color       string
	Charge      string
	SubBars     []SubBar
}

func (e Event) RowID() string { return e.ID }
func (e Event) RowNo() int    { return e.No }
func (e Event) Name() string  { return e.DisplayName }
func (e Event) Kind() RowKind { return KindEvent }

func (e Event) withNo(no int) Row {
	e.No = no
	return e
}

// WithSubBars returns a copy of e holding its own copy of bars.
func (e Event) WithSubBars(bars []SubBar) Event {
	e.SubBars = append([]SubBar(nil), bars...)
	return e
}

// Rename returns r with a new display name.
func Rename(r Row, name string) Row {
	switch v := r.(type) {
	case ChartTask:
		v.DisplayName = name
		return v
	case Separator:
		v.DisplayName = name
		return v
	case Event:
		v.DisplayName = name
		return v
	default:
		panic("domain: unknown row variant")
	}
}

// NewRow builds an empty row of the given kind.
func NewRow(kind RowKind, id string) (Row, error) {
	switch kind {
	case KindChart:
		return ChartTask{ID: id}, nil
	case KindSeparator:
		return Separator{ID: id}, nil
	case KindEvent:
		return Event{ID: id}, nil
	default:
		return nil, ErrUnknownRowKind
	}
}

// IntPtr returns a pointer to a copy of n.
func IntPtr(n int) *int { return &n }
