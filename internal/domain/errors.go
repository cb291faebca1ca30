package domain

import "errors"

var (
	ErrRowNotFound    = errors.New("row not found")
	ErrNotChartTask   = errors.New("row is not a chart task")
	ErrNotEvent       = errors.New("row is not an event")
	ErrUnknownRowKind = errors.New("unknown row kind")
	ErrInvalidMove    = errors.New("cannot move rows onto themselves")
	ErrDuplicateRowID = errors.New("duplicate row id")
)
