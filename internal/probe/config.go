// Package probe checks a running hoopmatch server end to end: it walks the
// player list concurrently and verifies that profiles, similarity results and
// the leaderboard agree with each other.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	K            int           // Similar players requested per player (0 = server default)
	SamePosition bool          // Request same-position similarity
	TopN         int           // Number of top entries to fetch from the leaderboard
	Workers      int           // Number of concurrent workers
	MaxPlayers   int           // Probe at most this many players (0 = all)
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Log every failure
}

// Player is a player list item.
type Player struct {
	Player string `json:"player"`
	Pos    string `json:"pos"`
}

// Profile is the part of a player profile the probe checks.
type Profile struct {
	Player      string  `json:"player"`
	Pos         string  `json:"pos"`
	CareerScore float64 `json:"career_score"`
	Rank        int     `json:"rank"`
}

// Similar is one similarity result.
type Similar struct {
	Player          string  `json:"player"`
	Pos             string  `json:"pos"`
	CareerScore     float64 `json:"career_score"`
	ScoreDifference float64 `json:"score_difference"`
}

// SimilarResponse is the body of GET /similar.
type SimilarResponse struct {
	K       int       `json:"k"`
	Results []Similar `json:"results"`
	Message string    `json:"message"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank        int     `json:"rank"`
	Player      string  `json:"player"`
	Pos         string  `json:"pos"`
	CareerScore float64 `json:"career_score"`
}

// Stats holds probe statistics.
type Stats struct {
	Players            int
	ProfilesRetrieved  int
	SimilarRetrieved   int
	EmptySimilar       int
	RequestsFailed     int
	Violations         []string
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
