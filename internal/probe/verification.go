package probe

import (
	"fmt"
	"math"
)

// verifySimilar checks one similarity answer against the target profile.
func verifySimilar(target Profile, resp SimilarResponse, k int, samePosition bool) []string {
	var out []string
	if k > 0 && len(resp.Results) > k {
		out = append(out, fmt.Sprintf("%s: %d results for k=%d", target.Player, len(resp.Results), k))
	}
	if len(resp.Results) == 0 && resp.Message == "" {
		out = append(out, fmt.Sprintf("%s: empty result without a message", target.Player))
	}
	for i, r := range resp.Results {
		if r.Player == target.Player {
			out = append(out, fmt.Sprintf("%s: target listed as similar to itself", target.Player))
		}
		if samePosition && r.Pos != target.Pos {
			out = append(out, fmt.Sprintf("%s: %s has position %s, want %s", target.Player, r.Player, r.Pos, target.Pos))
		}
		want := math.Abs(r.CareerScore - target.CareerScore)
		if math.Abs(want-r.ScoreDifference) > scoreEpsilon*math.Max(1, want) {
			out = append(out, fmt.Sprintf("%s: score difference to %s is %.6f, want %.6f", target.Player, r.Player, r.ScoreDifference, want))
		}
		if i > 0 && r.ScoreDifference < resp.Results[i-1].ScoreDifference {
			out = append(out, fmt.Sprintf("%s: results not ordered by score difference at %d", target.Player, i))
		}
	}
	return out
}

// verifyLeaderboard checks ordering and that entries agree with the profiles.
// When complete is set the profiles cover every player and the leaderboard
// head must be the best score among them.
func verifyLeaderboard(leaderboard []Entry, profiles map[string]Profile, complete bool) []string {
	var out []string
	if len(leaderboard) == 0 {
		if len(profiles) > 0 {
			out = append(out, "empty leaderboard")
		}
		return out
	}

	for i, e := range leaderboard {
		if i > 0 {
			prev := leaderboard[i-1]
			if e.CareerScore > prev.CareerScore {
				out = append(out, fmt.Sprintf("leaderboard not sorted: entry %d has a higher score than entry %d", i, i-1))
			}
			if e.Rank < prev.Rank {
				out = append(out, fmt.Sprintf("leaderboard ranks decrease at entry %d", i))
			}
		}
		if p, ok := profiles[e.Player]; ok {
			if p.Rank != e.Rank {
				out = append(out, fmt.Sprintf("%s: leaderboard rank %d, profile rank %d", e.Player, e.Rank, p.Rank))
			}
			if math.Abs(p.CareerScore-e.CareerScore) > scoreEpsilon {
				out = append(out, fmt.Sprintf("%s: leaderboard score %.6f, profile score %.6f", e.Player, e.CareerScore, p.CareerScore))
			}
		}
	}

	if complete && len(profiles) > 0 {
		best := math.Inf(-1)
		for _, p := range profiles {
			best = math.Max(best, p.CareerScore)
		}
		if math.Abs(best-leaderboard[0].CareerScore) > scoreEpsilon {
			out = append(out, fmt.Sprintf("top leaderboard score %.6f does not match best profile score %.6f", leaderboard[0].CareerScore, best))
		}
	}
	return out
}
