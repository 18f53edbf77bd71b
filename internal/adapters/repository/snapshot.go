package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hoopmatch/internal/domain/model"
	"github.com/okian/hoopmatch/internal/domain/scoring"
	"github.com/okian/hoopmatch/internal/domain/types"
	"github.com/okian/hoopmatch/pkg/metrics"
)

// Snapshot is an immutable view of one dataset load. Nothing in it is
// modified after NewSnapshot returns.
type Snapshot struct {
	LoadID   string
	Source   string
	LoadedAt time.Time

	Raw   *model.RawTable
	Table *model.NormalizedTable

	// Rank by player name in O(1) for reads
	RankByPlayer map[string]int
	// RowByPlayer maps a player to its index in Raw.Records and Table.Records
	RowByPlayer map[string]int

	// ranked holds every player ordered by Career Score desc, then row order
	ranked []types.Entry
}

// NewSnapshot ranks table and freezes it together with the raw rows it came from.
func NewSnapshot(raw *model.RawTable, table *model.NormalizedTable, opts ...SnapshotOption) *Snapshot {
	s := &Snapshot{
		LoadID:   uuid.NewString(),
		LoadedAt: time.Now(),
		Raw:      raw,
		Table:    table,
	}
	if raw != nil {
		s.Source = raw.Source
	}
	for _, opt := range opts {
		opt(s)
	}

	ordered := scoring.Ranked(table)
	s.ranked = make([]types.Entry, len(ordered))
	for i, r := range ordered {
		s.ranked[i] = types.Entry{Player: r.Player, Pos: r.Pos, CareerScore: r.CareerScore}
	}
	assignRanksWithTies(s.ranked)

	s.RankByPlayer = make(map[string]int, len(s.ranked))
	for _, e := range s.ranked {
		s.RankByPlayer[e.Player] = e.Rank
	}
	s.RowByPlayer = make(map[string]int, table.Len())
	if table != nil {
		for _, r := range table.Records {
			s.RowByPlayer[r.Player] = r.Row
		}
	}
	return s
}

// Len returns the number of players.
func (s *Snapshot) Len() int {
	return len(s.ranked)
}

// Top returns up to n entries from the head of the ranking.
func (s *Snapshot) Top(n int) []types.Entry {
	if n > len(s.ranked) {
		n = len(s.ranked)
	}
	out := make([]types.Entry, n)
	copy(out, s.ranked[:n])
	return out
}

// Record returns the raw and normalized rows of a player.
func (s *Snapshot) Record(player string) (model.PlayerRecord, model.NormalizedRecord, bool) {
	row, ok := s.RowByPlayer[player]
	if !ok {
		return model.PlayerRecord{}, model.NormalizedRecord{}, false
	}
	var raw model.PlayerRecord
	if s.Raw != nil && row < len(s.Raw.Records) {
		raw = s.Raw.Records[row]
	}
	return raw, s.Table.Records[row], true
}

// assignRanksWithTies assigns ranks with proper tie handling.
// Players with the same score get the same rank and the next distinct score
// gets the next rank.
func assignRanksWithTies(entries []types.Entry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].CareerScore != entries[i-1].CareerScore {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}

// SnapshotStore publishes snapshots through an atomic pointer so readers never
// take a lock and never observe a partially built dataset.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish atomically replaces the current snapshot. A nil snapshot is ignored.
func (st *SnapshotStore) Publish(_ context.Context, s *Snapshot) {
	if s == nil {
		return
	}
	st.current.Store(s)
	skipped, cols := 0, 0
	if s.Raw != nil {
		skipped = s.Raw.Skipped
	}
	if s.Table != nil {
		cols = len(s.Table.Columns)
	}
	metrics.UpdateDatasetShape(s.Len(), cols, skipped)
}

// Current returns the published snapshot.
func (st *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	s := st.current.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s, nil
}

// Rank returns the current rank and score for a player.
func (st *SnapshotStore) Rank(ctx context.Context, player string) (types.Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	s, err := st.Current(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	rank, ok := s.RankByPlayer[player]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	rec := s.Table.Records[s.RowByPlayer[player]]
	return types.Entry{Rank: rank, Player: rec.Player, Pos: rec.Pos, CareerScore: rec.CareerScore}, nil
}

// TopN returns the top-N entries ordered by Career Score desc.
func (st *SnapshotStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s, err := st.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.Top(n), nil
}

// Count returns the number of players in the published dataset.
func (st *SnapshotStore) Count(_ context.Context) int {
	s := st.current.Load()
	if s == nil {
		return 0
	}
	return s.Len()
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
}
