package probe

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hoopmatch/pkg/logger"
)

// ErrViolations is returned when the server answered but its answers disagree.
var ErrViolations = errors.New("probe found inconsistent results")

// Run executes the complete probe and returns its statistics.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	cfg = withDefaults(cfg)
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg)

	log.Info(ctx, "starting hoopmatch probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("k", cfg.K),
		logger.Bool("samePosition", cfg.SamePosition),
		logger.Int("workers", cfg.Workers),
		logger.Int("topN", cfg.TopN),
	)

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: List players
	var players []Player
	if err := client.getJSON(ctx, "/players", &players); err != nil {
		return stats, fmt.Errorf("player list failed: %w", err)
	}
	total := len(players)
	if cfg.MaxPlayers > 0 && len(players) > cfg.MaxPlayers {
		players = players[:cfg.MaxPlayers]
	}
	stats.Players = len(players)

	// Step 3: Profiles and similarity concurrently
	profiles := probePlayers(ctx, cfg, client, players, stats, log)

	// Step 4: Leaderboard
	var leaderboard []Entry
	if err := client.getJSON(ctx, "/leaderboard?limit="+strconv.Itoa(cfg.TopN), &leaderboard); err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)
	// The best-score check needs a profile for every player on the server.
	complete := stats.Players == total && stats.ProfilesRetrieved == stats.Players
	for _, v := range verifyLeaderboard(leaderboard, profiles, complete) {
		stats.addViolation(v)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d violations", ErrViolations, len(stats.Violations))
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// probePlayers fetches the profile and similarity results of every player
// with a worker pool and verifies each answer.
func probePlayers(ctx context.Context, cfg *Config, client *HTTPClient, players []Player, stats *Stats, log logger.Logger) map[string]Profile {
	var (
		profiles  = make(map[string]Profile, len(players))
		mu        sync.Mutex
		profiled  int64
		similar   int64
		empty     int64
		failed    int64
		indexChan = make(chan int, cfg.Workers*WorkerChannelMultiplier)
		wg        sync.WaitGroup
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					return
				}
				name := players[index].Player

				var p Profile
				if err := client.getJSON(ctx, profilePath(name), &p); err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "profile failed", logger.String("player", name), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&profiled, 1)

				var resp SimilarResponse
				if err := client.getJSON(ctx, similarPath(name, cfg.K, cfg.SamePosition), &resp); err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "similar failed", logger.String("player", name), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&similar, 1)
				if len(resp.Results) == 0 {
					atomic.AddInt64(&empty, 1)
				}

				violations := verifySimilar(p, resp, cfg.K, cfg.SamePosition)
				mu.Lock()
				profiles[name] = p
				for _, v := range violations {
					stats.addViolation(v)
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.ProfilesRetrieved = int(atomic.LoadInt64(&profiled))
	stats.SimilarRetrieved = int(atomic.LoadInt64(&similar))
	stats.EmptySimilar = int(atomic.LoadInt64(&empty))
	stats.RequestsFailed = int(atomic.LoadInt64(&failed))
	if stats.RequestsFailed > 0 {
		stats.addViolation(fmt.Sprintf("%d requests failed", stats.RequestsFailed))
	}
	return profiles
}

func (s *Stats) addViolation(v string) {
	if len(s.Violations) < maxViolations {
		s.Violations = append(s.Violations, v)
	}
}

func withDefaults(cfg *Config) *Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.TopN <= 0 {
		out.TopN = DefaultTopN
	}
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU() * WorkerChannelMultiplier
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return &out
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.ProfilesRetrieved+stats.SimilarRetrieved) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("profilesRetrieved", stats.ProfilesRetrieved),
		logger.Int("similarRetrieved", stats.SimilarRetrieved),
		logger.Int("emptySimilar", stats.EmptySimilar),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
