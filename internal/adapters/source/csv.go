// Package source loads player career tables from delimited files.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/hoopmatch/internal/domain/model"
)

const (
	byteOrderMark = "\uFEFF"
	// ctxCheckEvery is how many rows are read between context checks.
	ctxCheckEvery = 1024
)

// missingMarkers are cell values treated as absent, compared case-insensitively.
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

// CSVLoader reads the first existing file out of an ordered list of paths.
type CSVLoader struct {
	paths     []string
	delimiter rune
	decimal   rune
}

// NewCSVLoader creates a loader trying paths in order.
func NewCSVLoader(paths []string, opts ...Option) *CSVLoader {
	l := &CSVLoader{decimal: '.'}
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			l.paths = append(l.paths, p)
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locations returns the paths the loader tries, in order.
func (l *CSVLoader) Locations() []string {
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

// Load opens the first path that exists and parses it. When none exists the
// error wraps ErrSourceNotFound and names every expected location.
func (l *CSVLoader) Load(ctx context.Context) (*model.RawTable, error) {
	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
		}
		table, err := l.read(ctx, f, path)
		_ = f.Close()
		return table, err
	}
	return nil, fmt.Errorf("%w: expected the player stats file at %s", ErrSourceNotFound, quoteAll(l.paths))
}

// Read parses a delimited table from r. A zero delimiter is detected from name.
func Read(ctx context.Context, r io.Reader, name string, delimiter rune) (*model.RawTable, error) {
	l := &CSVLoader{delimiter: delimiter, decimal: '.'}
	return l.read(ctx, r, name)
}

func (l *CSVLoader) read(ctx context.Context, r io.Reader, name string) (*model.RawTable, error) {
	delim := l.delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s has no header row", model.ErrSchema, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, name, err)
	}
	names := headerNames(header)

	playerIdx, posIdx := -1, -1
	for i, n := range names {
		switch n {
		case model.PlayerColumn:
			if playerIdx < 0 {
				playerIdx = i
			}
		case model.PosColumn:
			if posIdx < 0 {
				posIdx = i
			}
		}
	}
	if playerIdx < 0 {
		return nil, fmt.Errorf("%w: %s is missing required column %q", model.ErrSchema, name, model.PlayerColumn)
	}

	table := &model.RawTable{Source: name}
	var rows [][]string
	for line := 1; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, name, err)
		}
		row := make([]string, len(names))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		if isMissing(row[playerIdx]) {
			table.Skipped++
			continue
		}
		rows = append(rows, row)
	}

	table.Columns = make([]model.Column, len(names))
	numericIdx := make([]int, 0, len(names))
	for i, n := range names {
		col := model.Column{Name: n}
		for _, row := range rows {
			if isMissing(row[i]) {
				col.Missing++
			}
		}
		switch {
		case i == playerIdx || i == posIdx:
			col.Kind = model.KindIdentity
		case l.numericColumn(rows, i):
			col.Kind = model.KindNumeric
			numericIdx = append(numericIdx, i)
			table.Numeric = append(table.Numeric, n)
		default:
			col.Kind = model.KindText
		}
		table.Columns[i] = col
	}

	table.Records = make([]model.PlayerRecord, len(rows))
	for r, row := range rows {
		rec := model.PlayerRecord{
			Player: row[playerIdx],
			Pos:    model.UnknownPosition,
			Stats:  make([]model.Stat, len(numericIdx)),
			Raw:    make(map[string]string, len(names)),
		}
		if posIdx >= 0 && !isMissing(row[posIdx]) {
			rec.Pos = row[posIdx]
		}
		for j, i := range numericIdx {
			if v, ok := l.parseNumeric(row[i]); ok {
				rec.Stats[j] = model.Stat{Value: v, Valid: true}
			}
		}
		for i, n := range names {
			rec.Raw[n] = row[i]
		}
		table.Records[r] = rec
	}
	return table, nil
}

// numericColumn reports whether every non-missing cell of column i parses as
// a number. A column with no values at all counts as numeric.
func (l *CSVLoader) numericColumn(rows [][]string, i int) bool {
	for _, row := range rows {
		if isMissing(row[i]) {
			continue
		}
		if _, ok := l.parseNumeric(row[i]); !ok {
			return false
		}
	}
	return true
}

func (l *CSVLoader) parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	group, decimal := byte(','), byte('.')
	if l.decimal == ',' {
		group, decimal = '.', ','
	}
	raw, ok := stripGrouping(raw, group, decimal)
	if !ok || raw == "" {
		return 0, false
	}
	if decimal == ',' {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// stripGrouping removes thousands separators from the integer part of s. It
// fails unless every group after the first has exactly three digits.
func stripGrouping(s string, group, decimal byte) (string, bool) {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, decimal); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if strings.IndexByte(frac, group) >= 0 {
		return "", false
	}
	if strings.IndexByte(intPart, group) < 0 {
		return s, true
	}
	sign := ""
	if intPart[0] == '-' || intPart[0] == '+' {
		sign, intPart = intPart[:1], intPart[1:]
	}
	groups := strings.Split(intPart, string(group))
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return sign + strings.Join(groups, "") + frac, true
}

// headerNames trims header cells and disambiguates repeated names as
// name.1, name.2 and so on.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, byteOrderMark)
		}
		n := strings.TrimSpace(h)
		if c, ok := seen[n]; ok {
			seen[n] = c + 1
			n = fmt.Sprintf("%s.%d", n, c+1)
		} else {
			seen[n] = 0
		}
		names[i] = n
	}
	return names
}

func isMissing(s string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	return ','
}

func quoteAll(paths []string) string {
	if len(paths) == 0 {
		return "(no paths configured)"
	}
	q := make([]string, len(paths))
	for i, p := range paths {
		q[i] = strconv.Quote(p)
	}
	return strings.Join(q, " or ")
}
