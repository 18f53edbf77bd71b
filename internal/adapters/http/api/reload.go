package api

import (
	"context"
	"net/http"
	"time"

	repository "github.com/okian/hoopmatch/internal/adapters/repository"
)

// ReloadDependencies defines the interface for rebuilding the dataset.
type ReloadDependencies interface {
	Reload(ctx context.Context) (*repository.Snapshot, error)
}

// ReloadHandler handles dataset reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

type reloadResponse struct {
	LoadID         string    `json:"load_id"`
	Source         string    `json:"source"`
	LoadedAt       time.Time `json:"loaded_at"`
	Players        int       `json:"players"`
	NumericColumns int       `json:"numeric_columns"`
	SkippedRows    int       `json:"skipped_rows"`
}

// HandleReload handles POST /reload requests. A failed reload leaves the
// previously published dataset in place.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	snap, err := h.deps.Reload(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	resp := reloadResponse{
		LoadID:   snap.LoadID,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Players:  snap.Len(),
	}
	if snap.Table != nil {
		resp.NumericColumns = len(snap.Table.Columns)
	}
	if snap.Raw != nil {
		resp.SkippedRows = snap.Raw.Skipped
	}
	writeJSON(w, http.StatusOK, resp)
}
