package api

import (
	"net/http"
)

// HandleDashboard serves the embedded dashboard page.
func (s *Server) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
