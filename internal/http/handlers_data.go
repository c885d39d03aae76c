package http

import (
	"fmt"
	"net/http"

	"portfel/internal/core"
	applog "portfel/internal/log"
)

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Rates.Current(r.Context())
	if err != nil {
		fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSyncRates(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Rates.Sync(r.Context())
	if err != nil {
		fail(w, r, applog.OpSync, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Snapshots.Export(r.Context())
	if err != nil {
		fail(w, r, applog.OpExport, err)
		return
	}
	name := fmt.Sprintf("portfel-backup-%s.json", snap.ExportDate.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, r, http.StatusOK, snap)
}

// handleImport replaces all user data. The caller's session gets a fresh
// recurring guard so its next dashboard load processes the imported
// subscriptions.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		fail(w, r, applog.OpImport, err)
		return
	}
	if err := s.deps.Snapshots.Import(r.Context(), snap); err != nil {
		fail(w, r, applog.OpImport, err)
		return
	}
	s.sessionGuard(w, r).Reset()
	writeJSON(w, r, http.StatusOK, map[string]int{
		"wallets":      len(snap.Wallets),
		"categories":   len(snap.Categories),
		"transactions": len(snap.Transactions),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Snapshots.Reset(r.Context()); err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	s.sessionGuard(w, r).Reset()
	w.WriteHeader(http.StatusNoContent)
}
