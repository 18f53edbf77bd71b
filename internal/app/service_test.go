package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/okian/hoopmatch/internal/app"
	"github.com/okian/hoopmatch/internal/adapters/repository"
	"github.com/okian/hoopmatch/internal/adapters/source"
	"github.com/okian/hoopmatch/internal/domain/model"
	"github.com/okian/hoopmatch/internal/domain/scoring"
	"github.com/okian/hoopmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Career scores follow pts only, the other stats are constant.
const guardsAndForwards = `player,pos,team,pts,reb,ast,fg_pct
A,G,BOS,10,5,5,0.45
B,G,LAL,9,5,5,0.45
C,F,NYK,7,5,5,0.45
D,F,CHI,15,5,5,0.45
E,C,MIA,30,5,5,0.45
`

func writeCSV(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, "NBA_career_stats.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func startService(t *testing.T, content string, opts ...service.Option) *service.Service {
	path := writeCSV(t, t.TempDir(), content)
	svc := service.New(append([]service.Option{service.WithDataPaths(path)}, opts...)...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func names(results []types.Similar) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Player
	}
	return out
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc.MaxSimilar(), ShouldEqual, 5)
			So(svc.DefaultSimilar(), ShouldEqual, 3)
			So(svc.TopLimit(), ShouldEqual, 10)
			So(svc.MaxTopLimit(), ShouldEqual, 100)
			So(svc.Locations(), ShouldResemble, []string{"NBA_career_stats.csv"})
		})
	})

	Convey("Given a new service with custom limits", t, func() {
		svc := service.New(
			service.WithSimilarLimits(4, 2),
			service.WithTopLimits(20, 50),
			service.WithDataPaths("a.csv", "b.csv"),
		)

		Convey("Then defaults should be clamped to the maximums", func() {
			So(svc.MaxSimilar(), ShouldEqual, 2)
			So(svc.DefaultSimilar(), ShouldEqual, 2)
			So(svc.TopLimit(), ShouldEqual, 20)
			So(svc.MaxTopLimit(), ShouldEqual, 50)
			So(svc.Locations(), ShouldResemble, []string{"a.csv", "b.csv"})
		})
	})
}

func TestService_FindSimilar(t *testing.T) {
	Convey("Given a started service over guards and forwards", t, func() {
		svc := startService(t, guardsAndForwards)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When asking for the 2 players closest to A", func() {
			resp, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "A", K: 2})

			Convey("Then B and C should be returned nearest first", func() {
				So(err, ShouldBeNil)
				So(names(resp.Results), ShouldResemble, []string{"B", "C"})
				So(resp.Results[0].ScoreDifference, ShouldBeLessThan, resp.Results[1].ScoreDifference)
				So(resp.Message, ShouldBeEmpty)
			})

			Convey("And similarity should be derived from the difference", func() {
				r := resp.Results[0]
				So(r.ScoreSimilarity, ShouldAlmostEqual, scoring.ScoreSimilarity(r.ScoreDifference), 1e-9)
			})

			Convey("And the target profile should be included", func() {
				So(resp.Target, ShouldNotBeNil)
				So(resp.Target.Player, ShouldEqual, "A")
				So(resp.Target.Pos, ShouldEqual, "G")
			})

			Convey("And key stats should show the first three configured columns", func() {
				So(resp.Results[0].KeyStats, ShouldResemble, []types.KeyStat{
					{Name: "PTS", Value: "9"},
					{Name: "REB", Value: "5"},
					{Name: "AST", Value: "5"},
				})
			})
		})

		Convey("When restricting to the same position", func() {
			resp, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "A", K: 2, SamePosition: true})

			Convey("Then only B should be returned", func() {
				So(err, ShouldBeNil)
				So(names(resp.Results), ShouldResemble, []string{"B"})
			})
		})

		Convey("When the target is alone in its position", func() {
			resp, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "E", K: 3, SamePosition: true})

			Convey("Then the result should be empty with a message naming the position", func() {
				So(err, ShouldBeNil)
				So(resp.Results, ShouldBeEmpty)
				So(resp.Message, ShouldEqual, "No players found with similar career scores in the C position.")
			})
		})

		Convey("When the target is unknown", func() {
			resp, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "Nobody", K: 3})

			Convey("Then the result should be empty, not an error", func() {
				So(err, ShouldBeNil)
				So(resp.Target, ShouldBeNil)
				So(resp.Results, ShouldNotBeNil)
				So(resp.Results, ShouldBeEmpty)
				So(resp.Message, ShouldEqual, "No players found with similar career scores.")
			})
		})

		Convey("When k is out of range", func() {
			for _, k := range []int{0, -2, 6} {
				_, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "A", K: k})
				So(errors.Is(err, scoring.ErrInvalidK), ShouldBeTrue)
			}
		})
	})

	Convey("Given a source without some key stat columns", t, func() {
		svc := startService(t, "player,pos,pts,ast,fg_pct\nA,G,10,5,0.5\nB,G,12,6,0.4\n")
		defer svc.Stop()

		Convey("Then only present columns among the first three names should be shown", func() {
			resp, err := svc.FindSimilar(context.Background(), types.SimilarRequest{Player: "A", K: 1})
			So(err, ShouldBeNil)
			So(resp.Results[0].KeyStats, ShouldResemble, []types.KeyStat{
				{Name: "PTS", Value: "12"},
				{Name: "AST", Value: "6"},
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t, guardsAndForwards)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When listing players", func() {
			players, err := svc.Players(ctx)

			Convey("Then they should be in source order", func() {
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 5)
				So(players[0], ShouldResemble, types.PlayerSummary{Player: "A", Pos: "G"})
				So(players[4].Player, ShouldEqual, "E")
			})
		})

		Convey("When fetching a player profile", func() {
			p, err := svc.Player(ctx, "D")

			Convey("Then it should carry the rank by career score", func() {
				So(err, ShouldBeNil)
				So(p.Rank, ShouldEqual, 2)
				So(p.CareerScore, ShouldBeGreaterThan, 0)
			})

			Convey("And an unknown player should not be found", func() {
				_, err := svc.Player(ctx, "Z")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When summarizing the dataset", func() {
			sum, err := svc.Summary(ctx, 0)

			Convey("Then counts and the top table should be reported", func() {
				So(err, ShouldBeNil)
				So(sum.TotalPlayers, ShouldEqual, 5)
				So(sum.AvailableColumns, ShouldEqual, 7)
				So(sum.NumericColumns, ShouldResemble, []string{"pts", "reb", "ast", "fg_pct"})
				So(sum.Positions, ShouldResemble, []types.PositionCount{
					{Pos: "F", Count: 2},
					{Pos: "G", Count: 2},
					{Pos: "C", Count: 1},
				})
				So(sum.Top, ShouldHaveLength, 5)
				So(sum.Top[0].Player, ShouldEqual, "E")
				So(sum.Top[1].Player, ShouldEqual, "D")
				So(sum.LoadID, ShouldNotBeEmpty)
			})

			Convey("And text columns should not count as available", func() {
				textHeavy := startService(t, "player,pos,team,college,pts\nA,G,BOS,Duke,10\nB,F,LAL,UNC,12\n")
				sum, err := textHeavy.Summary(ctx, 0)
				So(err, ShouldBeNil)
				So(sum.AvailableColumns, ShouldEqual, 4)
			})

			Convey("And a limit above the maximum should be rejected", func() {
				_, err := svc.Summary(ctx, 101)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When reading the leaderboard", func() {
			top, err := svc.TopN(ctx, 2)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
			So(top[0].Player, ShouldEqual, "E")

			e, err := svc.Rank(ctx, "C")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 5)
		})

		Convey("Then stats should describe the loaded dataset", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["loaded"], ShouldEqual, true)
			So(stats["players"], ShouldEqual, 5)
			So(stats["numericColumns"], ShouldEqual, 4)
		})
	})
}

func TestService_Degraded(t *testing.T) {
	Convey("Given a service whose source file does not exist", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "NBA_career_stats.csv")
		svc := service.New(service.WithDataPaths(path))
		ctx := context.Background()

		Convey("When starting", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start without a dataset", func() {
				So(err, ShouldBeNil)
				So(errors.Is(svc.LoadError(), source.ErrSourceNotFound), ShouldBeTrue)
				stats := svc.GetStats()
				So(stats["loaded"], ShouldEqual, false)
				So(stats["loadError"], ShouldContainSubstring, path)
			})

			Convey("And queries should report the missing dataset and its location", func() {
				_, err := svc.FindSimilar(ctx, types.SimilarRequest{Player: "A", K: 1})
				So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
				So(errors.Is(err, source.ErrSourceNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, path)

				_, err = svc.Summary(ctx, 0)
				So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
			})

			Convey("And a reload should succeed once the file appears", func() {
				writeCSV(t, dir, guardsAndForwards)
				snap, err := svc.Reload(ctx)
				So(err, ShouldBeNil)
				So(snap.Len(), ShouldEqual, 5)
				So(svc.LoadError(), ShouldBeNil)
			})
		})
	})

	Convey("Given a loaded service whose source becomes invalid", t, func() {
		dir := t.TempDir()
		path := writeCSV(t, dir, guardsAndForwards)
		svc := service.New(service.WithDataPaths(path))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		writeCSV(t, dir, "name,pts\nA,1\n")

		Convey("When reloading", func() {
			_, err := svc.Reload(ctx)

			Convey("Then the reload should fail with a schema error", func() {
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
			})

			Convey("And the previous dataset should still be served", func() {
				players, err := svc.Players(ctx)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 5)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then reload should be refused", func() {
			_, err := svc.Reload(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t, guardsAndForwards)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping again should be a no-op", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

// scriptedLoader answers call i with steps[i]. A step with a gate blocks until
// the gate is closed and signals entered first.
type scriptedLoader struct {
	mu    sync.Mutex
	calls int
	steps []loadStep
}

type loadStep struct {
	content string
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (l *scriptedLoader) Load(ctx context.Context) (*model.RawTable, error) {
	l.mu.Lock()
	step := l.steps[l.calls]
	l.calls++
	l.mu.Unlock()

	if step.gate != nil {
		close(step.entered)
		<-step.gate
	}
	if step.err != nil {
		return nil, step.err
	}
	return source.Read(ctx, strings.NewReader(step.content), "scripted.csv", 0)
}

func (l *scriptedLoader) Locations() []string { return []string{"scripted.csv"} }

func TestService_ConcurrentReload(t *testing.T) {
	const initial = "player,pos,pts\nA,G,1\nB,G,2\n"
	const older = "player,pos,pts\nOld,G,1\nOlder,G,2\n"
	const newer = "player,pos,pts\nNew,G,1\nNewer,G,2\n"

	run := func(slow loadStep) (*service.Service, chan error, loadStep) {
		slow.gate = make(chan struct{})
		slow.entered = make(chan struct{})
		loader := &scriptedLoader{steps: []loadStep{{content: initial}, slow, {content: newer}}}
		svc := service.New(service.WithLoader(loader))
		So(svc.Start(context.Background()), ShouldBeNil)

		done := make(chan error, 1)
		go func() {
			_, err := svc.Reload(context.Background())
			done <- err
		}()
		<-slow.entered
		return svc, done, slow
	}

	Convey("Given an older reload that finishes after a newer one", t, func() {
		ctx := context.Background()
		svc, done, slow := run(loadStep{content: older})

		fresh, err := svc.Reload(ctx)
		So(err, ShouldBeNil)
		close(slow.gate)
		So(<-done, ShouldBeNil)

		Convey("Then the newer dataset should stay published", func() {
			_, err := svc.Player(ctx, "New")
			So(err, ShouldBeNil)
			_, err = svc.Player(ctx, "Old")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			sum, err := svc.Summary(ctx, 0)
			So(err, ShouldBeNil)
			So(sum.LoadID, ShouldEqual, fresh.LoadID)
		})
	})

	Convey("Given an older reload that fails after a newer one succeeded", t, func() {
		ctx := context.Background()
		svc, done, slow := run(loadStep{err: source.ErrSourceUnavailable})

		_, err := svc.Reload(ctx)
		So(err, ShouldBeNil)
		close(slow.gate)

		Convey("Then its failure should be returned without marking the service as failed", func() {
			So(errors.Is(<-done, source.ErrSourceUnavailable), ShouldBeTrue)
			So(svc.LoadError(), ShouldBeNil)
			_, err := svc.Player(ctx, "Newer")
			So(err, ShouldBeNil)
		})
	})
}
