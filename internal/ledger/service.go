package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

// ChangeNotifier receives a snapshot of the record store after every
// successful mutation.
type ChangeNotifier interface {
	Schedule(records []domain.Transaction)
}

// Loader reads a previously saved record store.
type Loader interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
}

// Service owns the record store. All mutations go through a single lock, so
// concurrent callers are serialized; the store has no merge semantics.
type Service struct {
	mu       sync.RWMutex
	state    State
	notifier ChangeNotifier
}

// NewService creates an empty ledger. notifier may be nil.
func NewService(notifier ChangeNotifier) *Service {
	return &Service{
		state:    State{Records: []domain.Transaction{}, Sort: domain.SortDesc},
		notifier: notifier,
	}
}

// Load replaces the store with the records from l.
func (s *Service) Load(ctx context.Context, l Loader) error {
	records, err := l.Load(ctx)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, ReplaceAll{Records: records})
	if err != nil {
		return err
	}
	s.state = next

	log := logger.FromContext(ctx)
	log.Info().Int("transaction_count", len(records)).Msg("Ledger loaded")
	return nil
}

// Create validates in and records a new sale.
func (s *Service) Create(ctx context.Context, in domain.Input) (domain.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, CreateAction{Input: in})
	if err != nil {
		return domain.Transaction{}, err
	}
	s.commit(next)
	created := next.Records[0]

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", created.ID).
		Str("customer", created.CustomerName).
		Str("status", string(created.Status)).
		Msg("Transaction created")
	return created, nil
}

// Update validates in and replaces every user field of the sale with id.
func (s *Service) Update(ctx context.Context, id string, in domain.Input) (domain.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, UpdateAction{ID: id, Input: in})
	if err != nil {
		return domain.Transaction{}, err
	}
	s.commit(next)
	updated, err := Find(next.Records, id)
	if err != nil {
		return domain.Transaction{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", id).
		Str("status", string(updated.Status)).
		Msg("Transaction updated")
	return updated, nil
}

// Delete removes the sale with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, DeleteAction{ID: id})
	if err != nil {
		return err
	}
	s.commit(next)

	log := logger.FromContext(ctx)
	log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	return nil
}

// Get returns the sale with id.
func (s *Service) Get(id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Find(s.state.Records, id)
}

// Records returns a copy of the store in store order.
func (s *Service) Records() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.state.Records)
}

// Search runs the query layer over the current store.
func (s *Service) Search(term string, dir domain.SortDirection) []domain.Transaction {
	return Search(s.Records(), term, dir)
}

// Customer rolls up the sales of one customer.
func (s *Service) Customer(name string) ([]domain.Transaction, domain.CustomerStats) {
	return Rollup(s.Records(), name)
}

// Customers summarises every customer.
func (s *Service) Customers() []CustomerSummary {
	return Customers(s.Records())
}

// Debtors lists customers with money due, largest first.
func (s *Service) Debtors() []CustomerSummary {
	return Debtors(s.Records())
}

// Stats totals the current store.
func (s *Service) Stats() domain.LedgerStats {
	return Stats(s.Records())
}

// commit installs next and notifies the persistence layer. Callers hold mu.
func (s *Service) commit(next State) {
	s.state = next
	if s.notifier != nil {
		s.notifier.Schedule(clone(next.Records))
	}
}
