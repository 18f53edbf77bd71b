// Package normalize turns a raw player table into z-scored features and a
// per-player Career Score.
package normalize

import (
	"fmt"
	"math"

	"github.com/okian/hoopmatch/internal/domain/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalize imputes missing numeric values with the column mean, standardizes
// every numeric column with its population mean and standard deviation, and
// appends the row-wise sum of the standardized values as the Career Score.
//
// Rows keep their order. Constant columns normalize to 0 for every row. An
// entirely missing column imputes 0 and is therefore constant.
func Normalize(raw *model.RawTable) (*model.NormalizedTable, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no table", model.ErrSchema)
	}
	if !raw.HasColumn(model.PlayerColumn) {
		return nil, fmt.Errorf("%w: missing required column %q", model.ErrSchema, model.PlayerColumn)
	}
	if err := checkIdentifiers(raw.Records); err != nil {
		return nil, err
	}

	n := len(raw.Records)
	out := &model.NormalizedTable{
		Columns: make([]model.ColumnStats, len(raw.Numeric)),
		Records: make([]model.NormalizedRecord, n),
	}
	for i, rec := range raw.Records {
		if len(rec.Stats) != len(raw.Numeric) {
			return nil, fmt.Errorf("%w: row %d has %d numeric values, want %d", model.ErrSchema, i, len(rec.Stats), len(raw.Numeric))
		}
		pos := rec.Pos
		if pos == "" {
			pos = model.UnknownPosition
		}
		out.Records[i] = model.NormalizedRecord{
			Row:    i,
			Player: rec.Player,
			Pos:    pos,
			Values: make([]float64, len(raw.Numeric)),
		}
	}

	col := make([]float64, n)
	for j, name := range raw.Numeric {
		cs := imputeColumn(raw.Records, j, col)
		cs.Name = name
		out.Columns[j] = cs
		for i := range out.Records {
			if cs.Constant {
				continue
			}
			out.Records[i].Values[j] = (col[i] - cs.Mean) / cs.Std
		}
	}

	for i := range out.Records {
		out.Records[i].CareerScore = floats.Sum(out.Records[i].Values)
	}
	return out, nil
}

// imputeColumn fills col with column j of records, replacing missing values
// with the mean of the present ones, and returns the column statistics.
func imputeColumn(records []model.PlayerRecord, j int, col []float64) model.ColumnStats {
	var cs model.ColumnStats
	present := make([]float64, 0, len(records))
	for _, rec := range records {
		if s := rec.Stats[j]; s.Valid {
			present = append(present, s.Value)
		}
	}
	cs.Missing = len(records) - len(present)
	if len(present) > 0 {
		cs.Mean = stat.Mean(present, nil)
	}

	for i, rec := range records {
		if s := rec.Stats[j]; s.Valid {
			col[i] = s.Value
		} else {
			col[i] = cs.Mean
		}
	}
	if len(col) == 0 {
		cs.Constant = true
		return cs
	}

	_, cs.Std = stat.PopMeanStdDev(col, nil)
	cs.Constant = isConstant(col) || cs.Std == 0 || math.IsNaN(cs.Std)
	return cs
}

// isConstant reports whether every value equals the first. Rounding in the
// mean can leave a tiny non-zero deviation for constant columns, so equality
// is checked on the data itself.
func isConstant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

func checkIdentifiers(records []model.PlayerRecord) error {
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		if rec.Player == "" {
			return fmt.Errorf("%w: row %d has no %s value", model.ErrSchema, i, model.PlayerColumn)
		}
		if first, ok := seen[rec.Player]; ok {
			return fmt.Errorf("%w: duplicate %s %q at rows %d and %d", model.ErrSchema, model.PlayerColumn, rec.Player, first, i)
		}
		seen[rec.Player] = i
	}
	return nil
}
