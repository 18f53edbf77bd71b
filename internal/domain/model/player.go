// Package model contains domain models passed between layers.
package model

import "errors"

// Identifying column names and defaults.
const (
	PlayerColumn    = "player"
	PosColumn       = "pos"
	UnknownPosition = "Unknown"
)

// ErrSchema reports a table whose shape cannot be used: a required identifying
// column is missing or identifiers are not unique.
var ErrSchema = errors.New("schema error")

// ColumnKind is the type inferred for a source column at load time.
type ColumnKind string

// Column kinds.
const (
	KindIdentity ColumnKind = "identity" // player, pos
	KindNumeric  ColumnKind = "numeric"
	KindText     ColumnKind = "text"
)

// Column describes one source column.
type Column struct {
	Name    string
	Kind    ColumnKind
	Missing int // cells that were empty or a missing marker
}

// Stat is an optional numeric cell.
type Stat struct {
	Value float64
	Valid bool
}

// PlayerRecord is one row of the raw input table.
type PlayerRecord struct {
	Player string
	Pos    string
	Stats  []Stat            // aligned with RawTable.Numeric
	Raw    map[string]string // original cell text by column name
}

// RawTable is the loaded source before normalization.
type RawTable struct {
	Source  string
	Columns []Column // header order
	Numeric []string // numeric feature columns, header order
	Records []PlayerRecord
	Skipped int // rows dropped for having no player value
}

// HasColumn reports whether the source header contained name.
func (t *RawTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnStats holds the frozen normalization statistics of one numeric column.
type ColumnStats struct {
	Name     string
	Mean     float64
	Std      float64
	Missing  int
	Constant bool // zero variance after imputation; normalizes to 0
}

// NormalizedRecord is a PlayerRecord with z-scored stats and its Career Score.
type NormalizedRecord struct {
	Row         int
	Player      string
	Pos         string
	Values      []float64 // aligned with NormalizedTable.Columns
	CareerScore float64
}

// NormalizedTable is the read-only output of the normalizer.
type NormalizedTable struct {
	Columns []ColumnStats
	Records []NormalizedRecord
}

// Len returns the number of records.
func (t *NormalizedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// ColumnNames returns the numeric column names in order.
func (t *NormalizedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the first record whose player equals name exactly.
func (t *NormalizedTable) Lookup(name string) (NormalizedRecord, bool) {
	if t == nil {
		return NormalizedRecord{}, false
	}
	for _, r := range t.Records {
		if r.Player == name {
			return r, true
		}
	}
	return NormalizedRecord{}, false
}

// SimilarityResult is one candidate returned by a similarity query.
type SimilarityResult struct {
	Row             int
	Player          string
	Pos             string
	CareerScore     float64
	ScoreDifference float64
}
