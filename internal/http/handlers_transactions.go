package http

import (
	"net/http"

	"portfel/internal/core"
	applog "portfel/internal/log"
)

// handleListTransactions returns every transaction, newest first. An optional
// walletId query parameter narrows the list to one wallet.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Ledger.ListTransactions(r.Context())
	if err != nil {
		fail(w, r, applog.OpList, err)
		return
	}
	if walletID := r.URL.Query().Get("walletId"); walletID != "" {
		filtered := make([]core.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.WalletID == walletID {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}
	writeJSON(w, r, http.StatusOK, nonNilSlice(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.Ledger.GetTransactionDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	t, err := req.transaction("", s.now(), s.deps.Location)
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.deps.Ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	t, err := req.transaction(r.PathValue("id"), s.now(), s.deps.Location)
	if err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.deps.Ledger.UpdateTransaction(r.Context(), t)
	if err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStopSubscription(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Ledger.StopSubscription(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}
