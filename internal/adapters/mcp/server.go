// Package mcp exposes the similarity queries as Model Context Protocol tools
// served over streamable HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/hoopmatch/internal/domain/types"
	"github.com/okian/hoopmatch/pkg/logger"
	"github.com/okian/hoopmatch/pkg/metrics"
)

// Tool names.
const (
	ToolFindSimilar    = "find_similar_players"
	ToolPlayerProfile  = "player_profile"
	ToolDatasetSummary = "dataset_summary"
)

// Dependencies are the queries the tools answer from.
type Dependencies interface {
	FindSimilar(ctx context.Context, req types.SimilarRequest) (types.SimilarResponse, error)
	Player(ctx context.Context, name string) (types.PlayerProfile, error)
	Summary(ctx context.Context, limit int) (types.DatasetSummary, error)
	DefaultSimilar() int
}

// FindSimilarArgs is the input of find_similar_players.
type FindSimilarArgs struct {
	Player       string `json:"player" jsonschema:"Exact player name as it appears in the dataset"`
	K            int    `json:"k,omitempty" jsonschema:"Number of similar players to return (0 = server default)"`
	SamePosition bool   `json:"same_position,omitempty" jsonschema:"Only compare against players in the same position"`
}

// PlayerProfileArgs is the input of player_profile.
type PlayerProfileArgs struct {
	Player string `json:"player" jsonschema:"Exact player name as it appears in the dataset"`
}

// DatasetSummaryArgs is the input of dataset_summary.
type DatasetSummaryArgs struct {
	Top int `json:"top,omitempty" jsonschema:"Size of the top table (0 = server default)"`
}

// Server holds the MCP server and its tools.
type Server struct {
	deps    Dependencies
	logger  logger.Logger
	version string
	server  *sdk.Server
	tools   []string
}

// New builds the tool server over deps.
func New(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		logger:  logger.Nop(),
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = sdk.NewServer(&sdk.Implementation{Name: "hoopmatch", Version: s.version}, nil)

	addTool(s, &sdk.Tool{
		Name:        ToolFindSimilar,
		Description: "Players whose Career Score is closest to the given player, optionally restricted to the same position",
	}, s.findSimilar)
	addTool(s, &sdk.Tool{
		Name:        ToolPlayerProfile,
		Description: "Position, Career Score, rank and key stats of one player",
	}, s.playerProfile)
	addTool(s, &sdk.Tool{
		Name:        ToolDatasetSummary,
		Description: "Dataset size, numeric columns, players per position and the top players by Career Score",
	}, s.datasetSummary)

	return s
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	out := make([]string, len(s.tools))
	copy(out, s.tools)
	return out
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *sdk.Server {
	return s.server
}

// Handler returns the streamable HTTP handler for the tools.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.server
	}, &sdk.StreamableHTTPOptions{JSONResponse: true})
}

// Register mounts the handler at path on mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux, path string) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(path, s.Handler())
}

func addTool[T any](s *Server, tool *sdk.Tool, handler func(context.Context, *sdk.CallToolRequest, T) (*sdk.CallToolResult, any, error)) {
	s.tools = append(s.tools, tool.Name)
	sdk.AddTool(s.server, tool, handler)
}

func (s *Server) findSimilar(ctx context.Context, _ *sdk.CallToolRequest, args FindSimilarArgs) (*sdk.CallToolResult, any, error) {
	player := strings.TrimSpace(args.Player)
	if player == "" {
		return s.toolError(ctx, ToolFindSimilar, fmt.Errorf("player is required")), nil, nil
	}
	k := args.K
	if k == 0 {
		k = s.deps.DefaultSimilar()
	}
	resp, err := s.deps.FindSimilar(ctx, types.SimilarRequest{Player: player, K: k, SamePosition: args.SamePosition})
	if err != nil {
		return s.toolError(ctx, ToolFindSimilar, err), nil, nil
	}
	return s.toolJSON(ctx, ToolFindSimilar, resp), nil, nil
}

func (s *Server) playerProfile(ctx context.Context, _ *sdk.CallToolRequest, args PlayerProfileArgs) (*sdk.CallToolResult, any, error) {
	player := strings.TrimSpace(args.Player)
	if player == "" {
		return s.toolError(ctx, ToolPlayerProfile, fmt.Errorf("player is required")), nil, nil
	}
	p, err := s.deps.Player(ctx, player)
	if err != nil {
		return s.toolError(ctx, ToolPlayerProfile, fmt.Errorf("%q: %w", player, err)), nil, nil
	}
	return s.toolJSON(ctx, ToolPlayerProfile, p), nil, nil
}

func (s *Server) datasetSummary(ctx context.Context, _ *sdk.CallToolRequest, args DatasetSummaryArgs) (*sdk.CallToolResult, any, error) {
	if args.Top < 0 {
		return s.toolError(ctx, ToolDatasetSummary, fmt.Errorf("top must not be negative")), nil, nil
	}
	sum, err := s.deps.Summary(ctx, args.Top)
	if err != nil {
		return s.toolError(ctx, ToolDatasetSummary, err), nil, nil
	}
	return s.toolJSON(ctx, ToolDatasetSummary, sum), nil, nil
}

func (s *Server) toolJSON(ctx context.Context, tool string, v any) *sdk.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.toolError(ctx, tool, err)
	}
	metrics.RecordMCPToolCall(tool, metrics.OutcomeSuccess)
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(b)}},
	}
}

func (s *Server) toolError(ctx context.Context, tool string, err error) *sdk.CallToolResult {
	metrics.RecordMCPToolCall(tool, metrics.OutcomeFailure)
	s.logger.Debug(ctx, "mcp tool failed", logger.String("tool", tool), logger.Error(err))
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
