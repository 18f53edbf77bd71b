// Package repository holds the published dataset snapshot and answers ranking reads.
package repository

import (
	"context"

	"github.com/okian/hoopmatch/internal/domain/types"
)

// Store provides access to the currently published dataset.
type Store interface {
	// Publish atomically replaces the current snapshot.
	Publish(ctx context.Context, s *Snapshot)

	// Current returns the published snapshot or ErrNotLoaded.
	Current(ctx context.Context) (*Snapshot, error)

	// Rank returns a player's leaderboard entry.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, player string) (types.Entry, error)

	// TopN returns the top-N entries ordered by Career Score desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of players in the published dataset.
	Count(ctx context.Context) int
}
