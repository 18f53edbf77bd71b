package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/hoopmatch/internal/adapters/repository"
	"github.com/okian/hoopmatch/internal/domain/scoring"
	"github.com/okian/hoopmatch/internal/domain/types"
)

type stubDeps struct {
	lastReq   types.SimilarRequest
	lastLimit int
	err       error
}

func (d *stubDeps) FindSimilar(_ context.Context, req types.SimilarRequest) (types.SimilarResponse, error) {
	d.lastReq = req
	if d.err != nil {
		return types.SimilarResponse{}, d.err
	}
	if req.K > 5 {
		return types.SimilarResponse{}, fmt.Errorf("%w: got %d, want 1..5", scoring.ErrInvalidK, req.K)
	}
	return types.SimilarResponse{
		Target:  &types.PlayerProfile{Player: req.Player, Pos: "G"},
		K:       req.K,
		Results: []types.Similar{{Player: "B", Pos: "G", ScoreDifference: 0.25}},
	}, nil
}

func (d *stubDeps) Player(_ context.Context, name string) (types.PlayerProfile, error) {
	if name != "A" {
		return types.PlayerProfile{}, repository.ErrNotFound
	}
	return types.PlayerProfile{Player: "A", Pos: "G", CareerScore: 1.25, Rank: 3}, nil
}

func (d *stubDeps) Summary(_ context.Context, limit int) (types.DatasetSummary, error) {
	d.lastLimit = limit
	return types.DatasetSummary{TotalPlayers: 4, Positions: []types.PositionCount{{Pos: "G", Count: 2}}}, d.err
}

func (d *stubDeps) DefaultSimilar() int { return 3 }

func text(res *sdk.CallToolResult) string {
	So(res, ShouldNotBeNil)
	So(res.Content, ShouldHaveLength, 1)
	tc, ok := res.Content[0].(*sdk.TextContent)
	So(ok, ShouldBeTrue)
	return tc.Text
}

func TestTools(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tool server", t, func() {
		deps := &stubDeps{}
		s := New(deps, WithVersion("test"))

		Convey("Then the three tools should be registered in order", func() {
			So(s.Tools(), ShouldResemble, []string{ToolFindSimilar, ToolPlayerProfile, ToolDatasetSummary})
			So(s.version, ShouldEqual, "test")
		})

		Convey("When finding similar players without k", func() {
			res, _, err := s.findSimilar(ctx, nil, FindSimilarArgs{Player: " A ", SamePosition: true})

			Convey("Then the default k should be used and the response encoded", func() {
				So(err, ShouldBeNil)
				So(res.IsError, ShouldBeFalse)
				So(deps.lastReq, ShouldResemble, types.SimilarRequest{Player: "A", K: 3, SamePosition: true})

				var resp types.SimilarResponse
				So(json.Unmarshal([]byte(text(res)), &resp), ShouldBeNil)
				So(resp.Results[0].Player, ShouldEqual, "B")
			})
		})

		Convey("When k is out of range", func() {
			res, _, err := s.findSimilar(ctx, nil, FindSimilarArgs{Player: "A", K: 9})

			Convey("Then a tool error should be returned, not a protocol error", func() {
				So(err, ShouldBeNil)
				So(res.IsError, ShouldBeTrue)
				So(text(res), ShouldContainSubstring, "1..5")
			})
		})

		Convey("When the player is blank", func() {
			res, _, _ := s.findSimilar(ctx, nil, FindSimilarArgs{})
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, "player is required")
		})

		Convey("When asking for a profile", func() {
			res, _, _ := s.playerProfile(ctx, nil, PlayerProfileArgs{Player: "A"})
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, `"rank": 3`)

			missing, _, _ := s.playerProfile(ctx, nil, PlayerProfileArgs{Player: "Z"})
			So(missing.IsError, ShouldBeTrue)
			So(text(missing), ShouldContainSubstring, `"Z"`)
		})

		Convey("When asking for the summary", func() {
			res, _, _ := s.datasetSummary(ctx, nil, DatasetSummaryArgs{Top: 5})
			So(res.IsError, ShouldBeFalse)
			So(deps.lastLimit, ShouldEqual, 5)
			So(text(res), ShouldContainSubstring, `"total_players": 4`)

			bad, _, _ := s.datasetSummary(ctx, nil, DatasetSummaryArgs{Top: -1})
			So(bad.IsError, ShouldBeTrue)
		})

		Convey("When no dataset is loaded", func() {
			deps.err = repository.ErrNotLoaded
			res, _, _ := s.datasetSummary(ctx, nil, DatasetSummaryArgs{})
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, repository.ErrNotLoaded.Error())
		})

		Convey("And registering on a nil mux should panic", func() {
			So(func() { s.Register(ctx, nil, "/mcp") }, ShouldPanic)
			So(func() { s.Register(ctx, http.NewServeMux(), "/mcp") }, ShouldNotPanic)
		})
	})
}

func TestToolsOverSession(t *testing.T) {
	Convey("Given a client connected in memory", t, func() {
		ctx := context.Background()
		s := New(&stubDeps{})

		serverTransport, clientTransport := sdk.NewInMemoryTransports()
		ss, err := s.MCP().Connect(ctx, serverTransport, nil)
		So(err, ShouldBeNil)
		defer ss.Close()

		client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
		cs, err := client.Connect(ctx, clientTransport, nil)
		So(err, ShouldBeNil)
		defer cs.Close()

		Convey("Then the tools should be listed", func() {
			list, err := cs.ListTools(ctx, nil)
			So(err, ShouldBeNil)
			names := make([]string, 0, len(list.Tools))
			for _, tool := range list.Tools {
				names = append(names, tool.Name)
			}
			So(names, ShouldContain, ToolFindSimilar)
			So(names, ShouldContain, ToolPlayerProfile)
			So(names, ShouldContain, ToolDatasetSummary)
		})

		Convey("And a similarity call should round trip", func() {
			res, err := cs.CallTool(ctx, &sdk.CallToolParams{
				Name:      ToolFindSimilar,
				Arguments: map[string]any{"player": "A", "k": 2},
			})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, `"player": "B"`)
		})
	})
}
