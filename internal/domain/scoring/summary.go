package scoring

import (
	"sort"

	"github.com/okian/hoopmatch/internal/domain/model"
)

// PositionCount is one bar of the position distribution.
type PositionCount struct {
	Pos   string
	Count int
}

// PositionDistribution counts players per position, most common first.
// Equal counts are ordered by position name.
func PositionDistribution(table *model.NormalizedTable) []PositionCount {
	if table == nil {
		return []PositionCount{}
	}
	counts := make(map[string]int)
	for _, r := range table.Records {
		counts[r.Pos]++
	}
	out := make([]PositionCount, 0, len(counts))
	for pos, n := range counts {
		out = append(out, PositionCount{Pos: pos, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}
