package api

import (
	"context"
	"net/http"

	"github.com/okian/hoopmatch/internal/domain/types"
)

// PlayersDependencies defines the interface for player lookups.
type PlayersDependencies interface {
	Players(ctx context.Context) ([]types.PlayerSummary, error)
	Player(ctx context.Context, name string) (types.PlayerProfile, error)
}

// PlayersHandler handles player list and profile requests.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleListPlayers handles GET /players requests.
func (h *PlayersHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	if !requireMethod(w, r, op, http.MethodGet) {
		return
	}
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleGetPlayer handles GET /players/{name} requests.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if !requireMethod(w, r, op, http.MethodGet) {
		return
	}
	name, ok := pathParam(r, "/players/")
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	profile, err := h.deps.Player(r.Context(), name)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
