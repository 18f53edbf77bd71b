// Package scoring answers nearest-by-Career-Score queries and ranks players
// by Career Score.
package scoring

import (
	"errors"
	"math"
	"sort"

	"github.com/okian/hoopmatch/internal/domain/model"
)

// Similarity display constants.
const (
	maxSimilarity       = 100
	similarityPerPoint  = 10
	minSimilarity       = 0
	defaultSummaryLimit = 10
)

// ErrInvalidK is returned when the requested result count is not usable.
var ErrInvalidK = errors.New("k must be a positive integer")

// FindSimilar returns up to k players whose Career Score is closest to the
// target's, nearest first. Ties keep the original row order.
//
// An unknown target, or no candidates left after the position filter, yields
// an empty result and no error.
func FindSimilar(table *model.NormalizedTable, target string, k int, samePositionOnly bool) ([]model.SimilarityResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	ref, ok := table.Lookup(target)
	if !ok {
		return []model.SimilarityResult{}, nil
	}

	candidates := make([]model.SimilarityResult, 0, table.Len())
	for _, r := range table.Records {
		if r.Player == ref.Player {
			continue
		}
		if samePositionOnly && r.Pos != ref.Pos {
			continue
		}
		candidates = append(candidates, model.SimilarityResult{
			Row:             r.Row,
			Player:          r.Player,
			Pos:             r.Pos,
			CareerScore:     r.CareerScore,
			ScoreDifference: math.Abs(r.CareerScore - ref.CareerScore),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ScoreDifference < candidates[j].ScoreDifference
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// ScoreSimilarity maps a score difference onto a 0..100 display value.
func ScoreSimilarity(diff float64) float64 {
	return math.Max(minSimilarity, maxSimilarity-diff*similarityPerPoint)
}

// Ranked returns all records ordered by Career Score descending. Equal scores
// keep the original row order.
func Ranked(table *model.NormalizedTable) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, table.Len())
	if table == nil {
		return out
	}
	copy(out, table.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CareerScore > out[j].CareerScore
	})
	return out
}

// TopN returns the n highest Career Scores. n <= 0 uses the default summary size.
func TopN(table *model.NormalizedTable, n int) []model.NormalizedRecord {
	if n <= 0 {
		n = defaultSummaryLimit
	}
	ranked := Ranked(table)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
