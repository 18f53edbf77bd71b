package main

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/hoopmatch/internal/probe"
)

// probeReport is the rendered outcome of a probe run.
type probeReport struct {
	Players            int      `json:"players"`
	ProfilesRetrieved  int      `json:"profiles_retrieved"`
	SimilarRetrieved   int      `json:"similar_retrieved"`
	EmptySimilar       int      `json:"empty_similar"`
	RequestsFailed     int      `json:"requests_failed"`
	LeaderboardEntries int      `json:"leaderboard_entries"`
	Duration           string   `json:"duration"`
	Violations         []string `json:"violations"`
}

func (c *cli) probeCmd() *cobra.Command {
	cfg := probe.Config{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a running server for consistent answers",
		Long: `probe walks the player list of a running server concurrently, fetches every
profile and similarity answer, and verifies them against each other and
against the leaderboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := probe.Run(cmd.Context(), &cfg, c.logger())
			if stats != nil {
				violations := stats.Violations
				if violations == nil {
					violations = []string{}
				}
				if rerr := c.render(probeReport{
					Players:            stats.Players,
					ProfilesRetrieved:  stats.ProfilesRetrieved,
					SimilarRetrieved:   stats.SimilarRetrieved,
					EmptySimilar:       stats.EmptySimilar,
					RequestsFailed:     stats.RequestsFailed,
					LeaderboardEntries: stats.LeaderboardEntries,
					Duration:           stats.Duration.Round(time.Millisecond).String(),
					Violations:         violations,
				}); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", probe.DefaultBaseURL, "base URL of the service")
	f.IntVarP(&cfg.K, "k", "k", 0, "similar players per request (default: server default)")
	f.BoolVar(&cfg.SamePosition, "same-position", false, "request same-position similarity")
	f.IntVar(&cfg.TopN, "top", probe.DefaultTopN, "leaderboard entries to fetch")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*probe.WorkerChannelMultiplier, "number of concurrent workers")
	f.IntVar(&cfg.MaxPlayers, "max-players", 0, "probe at most this many players (0 = all)")
	f.DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "HTTP request timeout")
	f.BoolVar(&cfg.Verbose, "verbose-failures", false, "log every failed request")
	return cmd
}
