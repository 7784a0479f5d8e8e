package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/middleware"
	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/export"
)

// CustomersHandler serves per-customer views, statements and CSV backups.
type CustomersHandler struct {
	ledger Ledger
	shop   domain.Shop
	log    zerolog.Logger
	now    func() time.Time
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(l Ledger, shop domain.Shop, log zerolog.Logger) *CustomersHandler {
	return &CustomersHandler{ledger: l, shop: shop, log: log, now: time.Now}
}

// ListCustomers handles GET /api/customers
func (h *CustomersHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.ledger.Customers()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// ListDebtors handles GET /api/debtors
func (h *CustomersHandler) ListDebtors(w http.ResponseWriter, r *http.Request) {
	debtors := h.ledger.Debtors()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debtors": debtors,
		"count":   len(debtors),
	})
}

// GetCustomer handles GET /api/customers/{name}. Unknown names are an
// empty account, not an error.
func (h *CustomersHandler) GetCustomer(w http.ResponseWriter, r *http.Request, name string) {
	records, stats := h.ledger.Customer(name)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":         name,
		"transactions": records,
		"stats":        stats,
	})
}

// GetStatement handles GET /api/customers/{name}/statement
func (h *CustomersHandler) GetStatement(w http.ResponseWriter, r *http.Request, name string) {
	records, stats := h.ledger.Customer(name)

	var buf bytes.Buffer
	if err := export.RenderStatement(&buf, h.shop, name, records, stats, h.now()); err != nil {
		h.log.Error().Err(err).Str("customer", name).Msg("Failed to render statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render statement")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ExportCSV handles GET /api/export.csv
func (h *CustomersHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.ledger.Records()); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export ledger")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.BackupFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
