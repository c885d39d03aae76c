package http

import (
	"errors"
	"net/http"

	"portfel/internal/charts"
	applog "portfel/internal/log"
)

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.deps.Ledger.ListWallets(r.Context())
	if err != nil {
		fail(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNilSlice(wallets))
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	wallet, err := req.wallet("")
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.deps.Ledger.CreateWallet(r.Context(), wallet)
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	wallet, err := req.wallet(r.PathValue("id"))
	if err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.deps.Ledger.UpdateWallet(r.Context(), wallet)
	if err != nil {
		fail(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWalletChart(w http.ResponseWriter, r *http.Request) {
	wallet, points, err := s.deps.Ledger.WalletHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, applog.OpRender, err)
		return
	}
	png, err := s.deps.Chart.Render(wallet.Name, wallet.Currency, points)
	if errors.Is(err, charts.ErrNotEnoughPoints) {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		fail(w, r, applog.OpRender, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Ledger.ListCategories(r.Context())
	if err != nil {
		fail(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNilSlice(categories))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.deps.Ledger.CreateCategory(r.Context(), req.category())
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
