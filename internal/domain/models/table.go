package models

import "time"

// Table is the tidy tabular result every adapter transform produces and
// the sink serializes. Cell values are one of string, float64, int, or
// time.Time; formatting is the sink's concern.
//
// An empty table still carries its full column set. Downstream consumers
// depend on column presence even when a source returned no rows.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty table with the given column set.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row. Callers are responsible for matching the column
// count; the sink rejects ragged tables.
func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// DateRange is a validated, inclusive calendar range. Start never
// exceeds End once constructed through params checking.
type DateRange struct {
	Start time.Time
	End   time.Time
}
