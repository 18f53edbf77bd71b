package api

import (
	"context"
	"net/http"

	"github.com/okian/hoopmatch/internal/domain/types"
)

// SummaryDependencies defines the interface for dataset summaries.
type SummaryDependencies interface {
	Summary(ctx context.Context, limit int) (types.DatasetSummary, error)
}

// SummaryHandler handles dataset summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /summary?limit=N requests. An absent limit
// uses the configured top size.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if !requireMethod(w, r, op, http.MethodGet) {
		return
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if limit < 0 {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	summary, err := h.deps.Summary(r.Context(), limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
