package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/api/handlers"
	"github.com/dvloznov/kitab-khata/internal/config"
	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/exporter"
	"github.com/dvloznov/kitab-khata/internal/identity"
	"github.com/dvloznov/kitab-khata/internal/insight"
	"github.com/dvloznov/kitab-khata/internal/jobs"
	"github.com/dvloznov/kitab-khata/internal/jobs/inmemory"
	"github.com/dvloznov/kitab-khata/internal/ledger"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

// stubGenerator answers every prompt with a fixed text.
type stubGenerator struct {
	text string
}

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, nil
}

// memStorage is a gcs.StorageService over a map.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) UploadBytes(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+object] = data
	return nil
}

func (m *memStorage) DownloadBytes(ctx context.Context, bucket, object string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[bucket+"/"+object], nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testServer struct {
	handler http.Handler
	store   *persist.MemoryStore
	flusher *persist.Flusher
	jobs    *inmemory.Store
	storage *memStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	store := persist.NewMemoryStore()
	flusher := persist.NewFlusher(store, persist.WithDelay(time.Hour))
	svc := ledger.NewService(flusher)

	sessions := identity.NewSessions(store)
	tracker := insight.NewTracker(stubGenerator{text: "Ramesh ji se ₹250 lena hai."}, time.Second)

	storage := &memStorage{objects: map[string][]byte{}}
	runner := exporter.NewRunner(svc)
	runner.Storage = storage
	runner.BackupBucket = "backups"

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, jobStore)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, queue.Start(ctx, runner.Handle))
	t.Cleanup(func() {
		cancel()
		_ = queue.Close()
	})

	h := NewRouter(Handlers{
		Transactions: handlers.NewTransactionsHandler(svc, flusher, log),
		Customers:    handlers.NewCustomersHandler(svc, config.DefaultShop(), log),
		Insights:     handlers.NewInsightsHandler(svc, tracker, log),
		Session:      handlers.NewSessionHandler(sessions, log),
		Jobs:         handlers.NewJobsHandler(jobStore, queue, runner, log),
		CurrentUser:  sessions.Current,
	}, log)

	return &testServer{handler: h, store: store, flusher: flusher, jobs: jobStore, storage: storage}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if str, ok := body.(string); ok {
			buf.WriteString(str)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sale(date, customer, book string, total, paid float64) map[string]any {
	return map[string]any{
		"date": date, "customerName": customer, "bookTitle": book,
		"totalPrice": total, "amountPaid": paid, "paymentMethod": "Cash",
	}
}

func TestTransactionsCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/transactions", sale("2024-03-01", "Ramesh", "NCERT Physics", 450, 200))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Transaction](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPartial, created.Status)
	assert.Equal(t, "250", created.Balance.String())

	rec = s.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/transactions/"+created.ID, sale("2024-03-01", "Ramesh", "NCERT Physics", 450, 450))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusPaid, decode[domain.Transaction](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/sync", nil)
	assert.Equal(t, persist.SyncPending, decode[persist.SyncStatus](t, rec).State)

	rec = s.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/transactions/missing", sale("2024-03-01", "A", "B", 1, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.flusher.Close(context.Background()))
	saved, err := s.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestCreateTransaction_Rejects(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/transactions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := sale("", "Ramesh", "NCERT", 100, 10)
	rec = s.do(t, http.MethodPost, "/api/transactions", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date is required")

	neg := sale("2024-03-01", "Ramesh", "NCERT", -5, 0)
	rec = s.do(t, http.MethodPost, "/api/transactions", neg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/transactions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchStatsAndCustomers(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []map[string]any{
		sale("2024-03-01", "Alice", "Gita", 100, 100),
		sale("2024-03-03", "Bob", "Ramayana", 300, 0),
		sale("2024-03-02", "Alice", "Quran", 200, 50),
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/transactions", body).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/transactions?sort=asc", nil)
	list := decode[struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}](t, rec)
	require.Equal(t, 3, list.Count)
	assert.Equal(t, "2024-03-01", list.Transactions[0].Date)

	rec = s.do(t, http.MethodGet, "/api/transactions?q=alice", nil)
	assert.Equal(t, 2, decode[struct {
		Count int `json:"count"`
	}](t, rec).Count)

	stats := decode[domain.LedgerStats](t, s.do(t, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, "600", stats.TotalSales.String())
	assert.Equal(t, "150", stats.TotalReceived.String())
	assert.Equal(t, "450", stats.TotalPending.String())
	assert.Equal(t, 3, stats.TransactionCount)

	cust := decode[struct {
		Name         string               `json:"name"`
		Transactions []domain.Transaction `json:"transactions"`
		Stats        domain.CustomerStats `json:"stats"`
	}](t, s.do(t, http.MethodGet, "/api/customers/Alice", nil))
	assert.Len(t, cust.Transactions, 2)
	assert.Equal(t, "150", cust.Stats.Due.String())

	// Rollup is exact-match.
	lower := decode[struct {
		Transactions []domain.Transaction `json:"transactions"`
	}](t, s.do(t, http.MethodGet, "/api/customers/alice", nil))
	assert.Empty(t, lower.Transactions)

	debtors := decode[struct {
		Debtors []ledger.CustomerSummary `json:"debtors"`
	}](t, s.do(t, http.MethodGet, "/api/debtors", nil))
	require.Len(t, debtors.Debtors, 2)
	assert.Equal(t, "Bob", debtors.Debtors[0].Name)

	rec = s.do(t, http.MethodGet, "/api/customers/Alice/statement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Party: ALICE")
	assert.Contains(t, rec.Body.String(), "VIKAS PUSTAK BHANDAR")

	rec = s.do(t, http.MethodGet, "/api/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Ledger_Backup_")
	assert.Equal(t, 4, strings.Count(rec.Body.String(), "\n"))
}

func TestCustomerPath(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/transactions", sale("2024-03-01", "Sharma & Sons/Delhi", "Atlas", 10, 0)).Code)

	rec := s.do(t, http.MethodGet, "/api/customers/Sharma%20%26%20Sons%2FDelhi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Name         string               `json:"name"`
		Transactions []domain.Transaction `json:"transactions"`
	}](t, rec)
	assert.Equal(t, "Sharma & Sons/Delhi", got.Name)
	assert.Len(t, got.Transactions, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/customers/", nil).Code)
}

func TestInsights(t *testing.T) {
	s := newTestServer(t)

	snap := decode[insight.Snapshot](t, s.do(t, http.MethodPost, "/api/insights?wait=true", nil))
	assert.Equal(t, insight.PhaseResolved, snap.Phase)
	assert.Equal(t, insight.NoDataMessage, snap.Text)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/transactions", sale("2024-03-01", "Ramesh", "NCERT", 450, 200)).Code)
	snap = decode[insight.Snapshot](t, s.do(t, http.MethodPost, "/api/insights?wait=true", nil))
	assert.Equal(t, "Ramesh ji se ₹250 lena hai.", snap.Text)

	got := decode[insight.Snapshot](t, s.do(t, http.MethodGet, "/api/insights", nil))
	assert.Equal(t, snap.Text, got.Text)
}

func TestSession(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/session", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/session", map[string]string{"name": " "}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/session", map[string]string{"credential": "garbage"}).Code)

	rec := s.do(t, http.MethodPost, "/api/session", map[string]string{"name": "Vikas Jain"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vikas.jain@shop.local", decode[domain.User](t, rec).Email)

	assert.Equal(t, "Vikas Jain", decode[domain.User](t, s.do(t, http.MethodGet, "/api/session", nil)).Name)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/session", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/session", nil).Code)
}

func TestExportJobs(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/transactions", sale("2024-03-01", "Ramesh", "NCERT", 450, 200)).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/exports", map[string]string{"target": "ftp"}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, "/api/exports", map[string]string{"target": "bigquery"}).Code)

	rec := s.do(t, http.MethodPost, "/api/exports", map[string]string{"target": "gcs_backup"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	jobID := decode[map[string]string](t, rec)["job_id"]
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		job := decode[jobs.ExportJob](t, s.do(t, http.MethodGet, "/api/jobs/"+jobID, nil))
		return job.Status == jobs.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	job := decode[jobs.ExportJob](t, s.do(t, http.MethodGet, "/api/jobs/"+jobID, nil))
	assert.True(t, strings.HasPrefix(job.Result, "gs://backups/backups/Ledger_Backup_"))
	assert.Equal(t, 1, s.storage.count())

	list := decode[struct {
		Count int `json:"count"`
	}](t, s.do(t, http.MethodGet, "/api/jobs?target=gcs_backup", nil))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/jobs/nope", nil).Code)
}

func TestExportJobs_RepeatedEnqueueReportsPending(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/transactions", sale("2024-03-01", "Ramesh", "NCERT", 450, 200)).Code)

	for i := 0; i < 25; i++ {
		rec := s.do(t, http.MethodPost, "/api/exports", map[string]string{"target": "gcs_backup"})
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Equal(t, string(jobs.JobStatusPending), decode[map[string]string](t, rec)["status"])
	}

	require.Eventually(t, func() bool {
		list := decode[struct {
			Count int `json:"count"`
		}](t, s.do(t, http.MethodGet, "/api/jobs?status=completed", nil))
		return list.Count == 25
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
