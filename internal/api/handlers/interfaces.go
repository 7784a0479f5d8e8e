package handlers

import (
	"context"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/insight"
	"github.com/dvloznov/kitab-khata/internal/jobs"
	"github.com/dvloznov/kitab-khata/internal/ledger"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

// Ledger is the ledger service used by the handlers.
type Ledger interface {
	Create(ctx context.Context, in domain.Input) (domain.Transaction, error)
	Update(ctx context.Context, id string, in domain.Input) (domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	Get(id string) (domain.Transaction, error)
	Records() []domain.Transaction
	Search(term string, dir domain.SortDirection) []domain.Transaction
	Customer(name string) ([]domain.Transaction, domain.CustomerStats)
	Customers() []ledger.CustomerSummary
	Debtors() []ledger.CustomerSummary
	Stats() domain.LedgerStats
}

// SyncReporter reports the persistence status.
type SyncReporter interface {
	Status() persist.SyncStatus
}

// InsightTracker runs AI insight requests.
type InsightTracker interface {
	Start(ctx context.Context, records []domain.Transaction) (<-chan insight.Snapshot, error)
	Snapshot() insight.Snapshot
}

// SessionManager keeps the signed-in user.
type SessionManager interface {
	Current(ctx context.Context) (domain.User, error)
	LoginManual(ctx context.Context, name string) (domain.User, error)
	LoginGoogle(ctx context.Context, credential string) (domain.User, error)
	Logout(ctx context.Context) error
}

// TargetChecker reports which export targets are configured.
type TargetChecker interface {
	Supports(target jobs.ExportTarget) bool
}

var _ Ledger = (*ledger.Service)(nil)
