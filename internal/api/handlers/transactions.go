package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/middleware"
	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/ledger"
	"github.com/dvloznov/kitab-khata/internal/logger"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

// TransactionsHandler handles the sale records.
type TransactionsHandler struct {
	ledger Ledger
	sync   SyncReporter
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(l Ledger, sync SyncReporter, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{ledger: l, sync: sync, log: log}
}

// ListTransactions handles GET /api/transactions?q=term&sort=asc|desc
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	records := h.ledger.Search(query.Get("q"), domain.ParseSortDirection(query.Get("sort")))

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": records,
		"count":        len(records),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in domain.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.ledger.Create(r.Context(), in)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// GetTransaction handles GET /api/transactions/{id}
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.ledger.Get(id)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var in domain.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.ledger.Update(r.Context(), id, in)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.ledger.Delete(r.Context(), id); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /api/stats
func (h *TransactionsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Stats())
}

// GetSyncStatus handles GET /api/sync
func (h *TransactionsHandler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		middleware.WriteJSON(w, http.StatusOK, persist.SyncStatus{State: persist.SyncSynced})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.sync.Status())
}

func (h *TransactionsHandler) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Ledger operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Ledger operation failed")
	}
}
