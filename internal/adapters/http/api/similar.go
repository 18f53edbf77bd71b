package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/hoopmatch/internal/domain/types"
)

var errMissingPlayer = errors.New("missing player")

// SimilarDependencies defines the interface for similarity queries.
type SimilarDependencies interface {
	FindSimilar(ctx context.Context, req types.SimilarRequest) (types.SimilarResponse, error)
	DefaultSimilar() int
}

// SimilarHandler handles similarity requests.
type SimilarHandler struct {
	deps SimilarDependencies
}

// NewSimilarHandler creates a new similarity handler.
func NewSimilarHandler(deps SimilarDependencies) *SimilarHandler {
	return &SimilarHandler{deps: deps}
}

// HandleGetSimilar handles GET /similar?player=NAME&k=N&same_position=BOOL requests.
// An absent k uses the configured default. A player with no match yields an
// empty result list and a message.
func (h *SimilarHandler) HandleGetSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_similar"
	if !requireMethod(w, r, op, http.MethodGet) {
		return
	}
	player := strings.TrimSpace(r.URL.Query().Get("player"))
	if player == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissingPlayer))
		return
	}
	k, err := intParam(r, "k", h.deps.DefaultSimilar())
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	same, err := boolParam(r, "same_position")
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := h.deps.FindSimilar(r.Context(), types.SimilarRequest{Player: player, K: k, SamePosition: same})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
