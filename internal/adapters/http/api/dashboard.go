package api

import (
	"net/http"
)

// dashboardHandler serves the dataset overview page.
type dashboardHandler struct{}

func newdashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
// The page reads /summary and draws the position histogram and top table.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
