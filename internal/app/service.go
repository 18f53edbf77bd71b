// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the MCP tools and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/hoopmatch/internal/adapters/repository"
	"github.com/okian/hoopmatch/internal/adapters/source"
	"github.com/okian/hoopmatch/internal/domain/model"
	"github.com/okian/hoopmatch/internal/domain/normalize"
	"github.com/okian/hoopmatch/internal/domain/scoring"
	"github.com/okian/hoopmatch/internal/domain/types"
	"github.com/okian/hoopmatch/pkg/logger"
	"github.com/okian/hoopmatch/pkg/metrics"
)

// ErrNotStarted is returned by Reload before Start.
var ErrNotStarted = errors.New("service not started")

// Loader reads the raw player table from its source.
type Loader interface {
	Load(ctx context.Context) (*model.RawTable, error)
	Locations() []string
}

// Service implements the query dependencies over the published dataset.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	loader Loader

	// Source configuration, used when no Loader is given
	dataPaths    []string
	delimiter    rune
	decimalComma bool

	// Query configuration
	maxSimilar     int
	defaultSimilar int
	topLimit       int
	maxTopLimit    int
	keyStats       []string
	keyStatsLimit  int

	// State
	started     bool
	loadErr     error
	lastAttempt time.Time
	loadCount   int
	loadSeq     uint64 // last attempt started
	appliedSeq  uint64 // newest attempt whose outcome is applied

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDataPaths sets the candidate source files, tried in order.
func WithDataPaths(paths ...string) Option {
	return func(s *Service) {
		if len(paths) > 0 {
			s.dataPaths = paths
		}
	}
}

// WithDelimiter sets the source field delimiter. Zero detects it.
func WithDelimiter(d rune) Option {
	return func(s *Service) {
		s.delimiter = d
	}
}

// WithDecimalComma parses source numbers written with a decimal comma.
func WithDecimalComma(enabled bool) Option {
	return func(s *Service) {
		s.decimalComma = enabled
	}
}

// WithLoader replaces the file loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithStore replaces the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSimilarLimits sets the default and maximum number of similar players.
func WithSimilarLimits(defaultK, maxK int) Option {
	return func(s *Service) {
		if maxK > 0 {
			s.maxSimilar = maxK
		}
		if defaultK > 0 {
			s.defaultSimilar = defaultK
		}
		if s.defaultSimilar > s.maxSimilar {
			s.defaultSimilar = s.maxSimilar
		}
	}
}

// WithTopLimits sets the default and maximum size of top tables.
func WithTopLimits(defaultN, maxN int) Option {
	return func(s *Service) {
		if maxN > 0 {
			s.maxTopLimit = maxN
		}
		if defaultN > 0 {
			s.topLimit = defaultN
		}
		if s.topLimit > s.maxTopLimit {
			s.topLimit = s.maxTopLimit
		}
	}
}

// WithKeyStats sets the raw columns shown next to players. Only the first
// limit names are considered, and of those only columns present in the source.
func WithKeyStats(names []string, limit int) Option {
	return func(s *Service) {
		if names != nil {
			s.keyStats = names
		}
		if limit >= 0 {
			s.keyStatsLimit = limit
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPaths:      []string{"NBA_career_stats.csv"},
		maxSimilar:     5,
		defaultSimilar: 3,
		topLimit:       10,
		maxTopLimit:    100,
		keyStats:       []string{"pts", "reb", "ast", "fg_pct"},
		keyStatsLimit:  3,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.loader == nil {
		var lopts []source.Option
		if s.delimiter != 0 {
			lopts = append(lopts, source.WithDelimiter(s.delimiter))
		}
		if s.decimalComma {
			lopts = append(lopts, source.WithDecimalComma())
		}
		s.loader = source.NewCSVLoader(s.dataPaths, lopts...)
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	return s
}

// Start loads the dataset. A failed load is logged and kept as the load error;
// the service still starts so the failure can be reported and retried.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting career score service...",
		logger.Any("locations", s.loader.Locations()),
	)

	if _, err := s.Reload(ctx); err != nil {
		s.logger.Warn(ctx, "service started without a dataset",
			logger.Error(err),
			logger.Any("expected", s.loader.Locations()),
		)
		return nil
	}

	s.logger.Info(ctx, "career score service started",
		logger.Int("players", s.store.Count(ctx)),
		logger.Int("maxSimilar", s.maxSimilar),
	)
	return nil
}

// Stop marks the service as stopped. The published dataset stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "career score service stopped")
}

// Reload reads and normalizes the source and publishes the result. On failure
// the previously published dataset stays in place.
func (s *Service) Reload(ctx context.Context) (*repository.Snapshot, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	start := time.Now()
	raw, err := s.loader.Load(ctx)
	var table *model.NormalizedTable
	if err == nil {
		table, err = normalize.Normalize(raw)
	}
	took := time.Since(start)
	ms := float64(took.Microseconds()) / 1000.0

	var snap *repository.Snapshot
	if err == nil {
		snap = repository.NewSnapshot(raw, table, repository.WithLoadedAt(start))
	}

	// Outcomes are applied in attempt order; a newer attempt that finished
	// first wins over this one.
	s.mu.Lock()
	s.loadCount++
	stale := seq < s.appliedSeq
	if !stale {
		s.appliedSeq = seq
		s.lastAttempt = start
		s.loadErr = err
		if err == nil {
			s.store.Publish(ctx, snap)
		}
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordDatasetLoad(metrics.OutcomeFailure, ms)
		metrics.RecordErrorByComponent("loader", loadErrorKind(err))
		s.logger.Error(ctx, "dataset load failed",
			logger.Error(err),
			logger.Duration("took", took),
			logger.Bool("stale", stale),
		)
		return nil, err
	}
	metrics.RecordDatasetLoad(metrics.OutcomeSuccess, ms)

	if stale {
		s.logger.Info(ctx, "dataset load superseded by a newer reload",
			logger.String("loadID", snap.LoadID),
			logger.Duration("took", took),
		)
		return s.store.Current(ctx)
	}

	s.logger.Info(ctx, "dataset loaded",
		logger.String("loadID", snap.LoadID),
		logger.String("source", snap.Source),
		logger.Int("players", snap.Len()),
		logger.Int("numericColumns", len(table.Columns)),
		logger.Int("skippedRows", raw.Skipped),
		logger.Duration("took", took),
	)
	return snap, nil
}

// snapshot returns the published dataset, or ErrNotLoaded carrying the last
// load error when there is none.
func (s *Service) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	snap, err := s.store.Current(ctx)
	if err == nil {
		return snap, nil
	}
	if loadErr := s.LoadError(); loadErr != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrNotLoaded, loadErr)
	}
	return nil, err
}

// FindSimilar answers a similarity query. k must be in [1, max similar].
func (s *Service) FindSimilar(ctx context.Context, req types.SimilarRequest) (types.SimilarResponse, error) {
	start := time.Now()

	if req.K < 1 || req.K > s.maxSimilar {
		return types.SimilarResponse{}, fmt.Errorf("%w: got %d, want 1..%d", scoring.ErrInvalidK, req.K, s.maxSimilar)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.SimilarResponse{}, err
	}

	results, err := scoring.FindSimilar(snap.Table, req.Player, req.K, req.SamePosition)
	if err != nil {
		return types.SimilarResponse{}, err
	}

	resp := types.SimilarResponse{
		K:            req.K,
		SamePosition: req.SamePosition,
		Results:      make([]types.Similar, 0, len(results)),
	}
	if target, ok := s.profile(snap, req.Player); ok {
		resp.Target = &target
	}
	for _, r := range results {
		raw, _, _ := snap.Record(r.Player)
		resp.Results = append(resp.Results, types.Similar{
			Player:          r.Player,
			Pos:             r.Pos,
			CareerScore:     r.CareerScore,
			ScoreDifference: r.ScoreDifference,
			ScoreSimilarity: scoring.ScoreSimilarity(r.ScoreDifference),
			KeyStats:        s.keyStatsFor(snap.Raw, raw),
		})
	}
	if len(resp.Results) == 0 {
		pos := ""
		if resp.Target != nil {
			pos = resp.Target.Pos
		}
		resp.Message = types.NoMatchMessage(pos, req.SamePosition)
	}

	metrics.RecordSimilarityQuery(req.SamePosition, len(resp.Results) == 0, float64(time.Since(start).Microseconds())/1000.0)
	s.logger.Debug(ctx, "similarity query",
		logger.String("player", req.Player),
		logger.Int("k", req.K),
		logger.Bool("samePosition", req.SamePosition),
		logger.Int("results", len(resp.Results)),
	)
	return resp, nil
}

// Player returns the profile of a single player.
func (s *Service) Player(ctx context.Context, name string) (types.PlayerProfile, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.PlayerProfile{}, err
	}
	p, ok := s.profile(snap, name)
	if !ok {
		return types.PlayerProfile{}, repository.ErrNotFound
	}
	return p, nil
}

// Players lists every player in source order.
func (s *Service) Players(ctx context.Context) ([]types.PlayerSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.PlayerSummary, len(snap.Table.Records))
	for i, r := range snap.Table.Records {
		out[i] = types.PlayerSummary{Player: r.Player, Pos: r.Pos}
	}
	return out, nil
}

// Summary describes the dataset. limit <= 0 uses the configured top size.
func (s *Service) Summary(ctx context.Context, limit int) (types.DatasetSummary, error) {
	if limit <= 0 {
		limit = s.topLimit
	}
	if limit > s.maxTopLimit {
		return types.DatasetSummary{}, fmt.Errorf("%w: got %d, max %d", repository.ErrInvalidLimit, limit, s.maxTopLimit)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.DatasetSummary{}, err
	}

	dist := scoring.PositionDistribution(snap.Table)
	positions := make([]types.PositionCount, len(dist))
	for i, d := range dist {
		positions[i] = types.PositionCount{Pos: d.Pos, Count: d.Count}
	}

	return types.DatasetSummary{
		LoadID:           snap.LoadID,
		Source:           snap.Source,
		LoadedAt:         snap.LoadedAt,
		TotalPlayers:     snap.Len(),
		AvailableColumns: availableColumns(snap.Table),
		NumericColumns:   snap.Table.ColumnNames(),
		Positions:        positions,
		Top:              snap.Top(limit),
	}, nil
}

// TopN returns the top N players by Career Score.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if n > s.maxTopLimit {
		return nil, fmt.Errorf("%w: got %d, max %d", repository.ErrInvalidLimit, n, s.maxTopLimit)
	}
	if _, err := s.snapshot(ctx); err != nil {
		return nil, err
	}
	return s.store.TopN(ctx, n)
}

// Rank returns the rank and Career Score of a player.
func (s *Service) Rank(ctx context.Context, player string) (types.Entry, error) {
	if _, err := s.snapshot(ctx); err != nil {
		return types.Entry{}, err
	}
	return s.store.Rank(ctx, player)
}

// LoadError returns the error of the most recent load, or nil after a success.
func (s *Service) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Locations returns the source paths tried on load.
func (s *Service) Locations() []string {
	return s.loader.Locations()
}

// MaxSimilar returns the largest accepted k.
func (s *Service) MaxSimilar() int { return s.maxSimilar }

// DefaultSimilar returns the k used when a caller does not name one.
func (s *Service) DefaultSimilar() int { return s.defaultSimilar }

// TopLimit returns the default top table size.
func (s *Service) TopLimit() int { return s.topLimit }

// MaxTopLimit returns the largest accepted top table size.
func (s *Service) MaxTopLimit() int { return s.maxTopLimit }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"loaded":      false,
		"loads":       s.loadCount,
		"maxSimilar":  s.maxSimilar,
		"locations":   s.loader.Locations(),
		"lastAttempt": s.lastAttempt,
	}
	if s.loadErr != nil {
		stats["loadError"] = s.loadErr.Error()
	}
	if snap, err := s.store.Current(ctx); err == nil {
		stats["loaded"] = true
		stats["loadId"] = snap.LoadID
		stats["source"] = snap.Source
		stats["loadedAt"] = snap.LoadedAt
		stats["players"] = snap.Len()
		stats["numericColumns"] = len(snap.Table.Columns)
		stats["skippedRows"] = snap.Raw.Skipped
	}

	metrics.CollectRuntime()
	return stats
}

func (s *Service) profile(snap *repository.Snapshot, name string) (types.PlayerProfile, bool) {
	raw, rec, ok := snap.Record(name)
	if !ok {
		return types.PlayerProfile{}, false
	}
	return types.PlayerProfile{
		Player:      rec.Player,
		Pos:         rec.Pos,
		CareerScore: rec.CareerScore,
		Rank:        snap.RankByPlayer[rec.Player],
		KeyStats:    s.keyStatsFor(snap.Raw, raw),
	}, true
}

// keyStatsFor returns the raw values of the first keyStatsLimit configured
// names that exist in the source, in configured order.
func (s *Service) keyStatsFor(table *model.RawTable, rec model.PlayerRecord) []types.KeyStat {
	names := s.keyStats
	if len(names) > s.keyStatsLimit {
		names = names[:s.keyStatsLimit]
	}
	out := make([]types.KeyStat, 0, len(names))
	for _, n := range names {
		if !table.HasColumn(n) {
			continue
		}
		v := rec.Raw[n]
		if v == "" {
			v = "N/A"
		}
		out = append(out, types.KeyStat{Name: types.KeyStatName(n), Value: v})
	}
	return out
}

// availableColumns counts the columns of the scored table: player, pos, the
// numeric features and the Career Score. Text columns are dropped.
func availableColumns(table *model.NormalizedTable) int {
	if table == nil {
		return 0
	}
	return len(table.Columns) + 3
}

func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, source.ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, source.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, model.ErrSchema):
		return "schema"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unknown"
}
