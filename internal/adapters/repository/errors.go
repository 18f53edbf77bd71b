package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrNotLoaded    = errors.New("dataset not loaded")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
