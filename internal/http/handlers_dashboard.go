package http

import (
	"net/http"

	applog "portfel/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	guard := s.sessionGuard(w, r)
	dash, err := s.deps.Dashboard.Load(r.Context(), guard)
	if err != nil {
		fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dash)
}

// handleProcessRecurring runs one engine pass regardless of the session guard.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.ProcessDue(r.Context(), s.now())
	if err != nil {
		fail(w, r, applog.OpRollover, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
