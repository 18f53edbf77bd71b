package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithInitialSnapshot publishes s when the store is created.
func WithInitialSnapshot(s *Snapshot) Option {
	return func(st *SnapshotStore) {
		if s != nil {
			st.current.Store(s)
		}
	}
}

// SnapshotOption applies a configuration option to a new Snapshot.
type SnapshotOption func(*Snapshot)

// WithLoadedAt overrides the snapshot creation time.
func WithLoadedAt(t time.Time) SnapshotOption {
	return func(s *Snapshot) {
		if !t.IsZero() {
			s.LoadedAt = t
		}
	}
}

// WithLoadID overrides the generated load identifier.
func WithLoadID(id string) SnapshotOption {
	return func(s *Snapshot) {
		if id != "" {
			s.LoadID = id
		}
	}
}
