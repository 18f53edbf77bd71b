// Package types contains common types used across the application
package types

import (
	"fmt"
	"strings"
	"time"
)

// Entry represents a leaderboard entry
type Entry struct {
	Rank        int     `json:"rank"`
	Player      string  `json:"player"`
	Pos         string  `json:"pos"`
	CareerScore float64 `json:"career_score"`
}

// KeyStat is one raw statistic shown next to a player.
type KeyStat struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlayerSummary is a player's row in the selector list.
type PlayerSummary struct {
	Player string `json:"player"`
	Pos    string `json:"pos"`
}

// PlayerProfile is the detail view of a single player.
type PlayerProfile struct {
	Player      string    `json:"player"`
	Pos         string    `json:"pos"`
	CareerScore float64   `json:"career_score"`
	Rank        int       `json:"rank"`
	KeyStats    []KeyStat `json:"key_stats"`
}

// SimilarRequest is a similarity query.
type SimilarRequest struct {
	Player       string `json:"player"`
	K            int    `json:"k"`
	SamePosition bool   `json:"same_position"`
}

// Similar is one similarity result with its presentation values.
type Similar struct {
	Player          string    `json:"player"`
	Pos             string    `json:"pos"`
	CareerScore     float64   `json:"career_score"`
	ScoreDifference float64   `json:"score_difference"`
	ScoreSimilarity float64   `json:"score_similarity"`
	KeyStats        []KeyStat `json:"key_stats"`
}

// SimilarResponse answers a similarity query.
type SimilarResponse struct {
	Target       *PlayerProfile `json:"target,omitempty"`
	K            int            `json:"k"`
	SamePosition bool           `json:"same_position"`
	Results      []Similar      `json:"results"`
	Message      string         `json:"message,omitempty"`
}

// PositionCount is one bar of the position distribution.
type PositionCount struct {
	Pos   string `json:"pos"`
	Count int    `json:"count"`
}

// DatasetSummary describes the loaded dataset.
type DatasetSummary struct {
	LoadID           string          `json:"load_id"`
	Source           string          `json:"source"`
	LoadedAt         time.Time       `json:"loaded_at"`
	TotalPlayers     int             `json:"total_players"`
	AvailableColumns int             `json:"available_columns"`
	NumericColumns   []string        `json:"numeric_columns"`
	Positions        []PositionCount `json:"positions"`
	Top              []Entry         `json:"top"`
}

// NoMatchMessage is shown when a similarity query has no results.
func NoMatchMessage(pos string, samePosition bool) string {
	if samePosition && pos != "" {
		return fmt.Sprintf("No players found with similar career scores in the %s position.", pos)
	}
	return "No players found with similar career scores."
}

// KeyStatName formats a column name for display.
func KeyStatName(column string) string {
	return strings.ToUpper(column)
}
