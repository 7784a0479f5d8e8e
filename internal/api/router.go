// Package api wires the HTTP handlers into a router with the standard
// middleware chain.
package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/handlers"
	"github.com/dvloznov/kitab-khata/internal/api/middleware"
)

// Handlers are the endpoint groups served by the router.
type Handlers struct {
	Transactions *handlers.TransactionsHandler
	Customers    *handlers.CustomersHandler
	Insights     *handlers.InsightsHandler
	Session      *handlers.SessionHandler
	Jobs         *handlers.JobsHandler

	// CurrentUser, when set, attaches the signed-in user to requests.
	CurrentUser middleware.UserLookup
}

// NewRouter builds the API routes and wraps them in the middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Transactions.ListTransactions(w, r)
		case http.MethodPost:
			h.Transactions.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" || strings.Contains(id, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.Transactions.GetTransaction(w, r, id)
		case http.MethodPut:
			h.Transactions.UpdateTransaction(w, r, id)
		case http.MethodDelete:
			h.Transactions.DeleteTransaction(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/stats", getOnly(h.Transactions.GetStats))
	mux.HandleFunc("/api/sync", getOnly(h.Transactions.GetSyncStatus))

	// Customer endpoints
	mux.HandleFunc("/api/customers", getOnly(h.Customers.ListCustomers))
	mux.HandleFunc("/api/debtors", getOnly(h.Customers.ListDebtors))
	mux.HandleFunc("/api/customers/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		name, statement, ok := customerPath(r.URL)
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, "Customer name is required")
			return
		}
		if statement {
			h.Customers.GetStatement(w, r, name)
			return
		}
		h.Customers.GetCustomer(w, r, name)
	})
	mux.HandleFunc("/api/export.csv", getOnly(h.Customers.ExportCSV))

	// Insights endpoints
	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Insights.GetInsight(w, r)
		case http.MethodPost:
			h.Insights.StartInsight(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Session endpoints
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Session.GetSession(w, r)
		case http.MethodPost:
			h.Session.Login(w, r)
		case http.MethodDelete:
			h.Session.Logout(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Export and jobs endpoints
	mux.HandleFunc("/api/exports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.Jobs.EnqueueExport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/jobs", getOnly(h.Jobs.ListJobs))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		h.Jobs.GetJob(w, r, jobID)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
		middleware.Auth(h.CurrentUser),
	)
}

func getOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		fn(w, r)
	}
}

// customerPath parses /api/customers/{name}[/statement]. The name is taken
// from the escaped path so that names containing "/" survive.
func customerPath(u *url.URL) (name string, statement bool, ok bool) {
	rest := strings.TrimPrefix(u.EscapedPath(), "/api/customers/")
	if escaped, found := strings.CutSuffix(rest, "/statement"); found {
		rest, statement = escaped, true
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false, false
	}
	name, err := url.PathUnescape(rest)
	if err != nil || name == "" {
		return "", false, false
	}
	return name, statement, true
}
