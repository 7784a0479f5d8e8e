package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// DefaultFlushDelay is how long the flusher waits after the last change.
const DefaultFlushDelay = 800 * time.Millisecond

// SyncState describes where the latest snapshot is on its way to storage.
type SyncState string

const (
	SyncSynced  SyncState = "synced"
	SyncPending SyncState = "pending"
	SyncSaving  SyncState = "saving"
	SyncFailed  SyncState = "failed"
)

// SyncStatus is reported to the UI and the API.
type SyncStatus struct {
	State      SyncState `json:"state"`
	LastError  string    `json:"lastError,omitempty"`
	LastSynced time.Time `json:"lastSynced,omitempty"`
}

// Flusher keeps the latest record snapshot and writes it to a Store once
// changes stop arriving for the configured delay. Only the newest snapshot
// is written.
type Flusher struct {
	store    Store
	log      zerolog.Logger
	debounce *Debouncer
	timeout  time.Duration
	now      func() time.Time

	saveMu sync.Mutex // one Save at a time

	mu       sync.Mutex
	snapshot []domain.Transaction
	dirty    bool
	status   SyncStatus
}

// FlusherOption configures a Flusher.
type FlusherOption func(*Flusher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) FlusherOption {
	return func(f *Flusher) {
		if d > 0 {
			f.debounce = NewDebouncer(d, f.flushBackground)
		}
	}
}

// WithLogger sets the logger used for background saves.
func WithLogger(log zerolog.Logger) FlusherOption {
	return func(f *Flusher) { f.log = log }
}

// WithSaveTimeout bounds each background save.
func WithSaveTimeout(d time.Duration) FlusherOption {
	return func(f *Flusher) { f.timeout = d }
}

// NewFlusher creates a flusher writing to store.
func NewFlusher(store Store, opts ...FlusherOption) *Flusher {
	f := &Flusher{
		store:   store,
		log:     zerolog.Nop(),
		timeout: 30 * time.Second,
		now:     time.Now,
		status:  SyncStatus{State: SyncSynced},
	}
	f.debounce = NewDebouncer(DefaultFlushDelay, f.flushBackground)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Schedule records the latest snapshot and restarts the delay.
func (f *Flusher) Schedule(records []domain.Transaction) {
	f.mu.Lock()
	f.snapshot = records
	f.dirty = true
	f.status.State = SyncPending
	f.mu.Unlock()

	f.debounce.Trigger()
}

// Status returns the current sync status.
func (f *Flusher) Status() SyncStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Flush writes the pending snapshot now, if there is one.
func (f *Flusher) Flush(ctx context.Context) error {
	f.debounce.Stop()
	return f.save(ctx)
}

// Close cancels the timer and performs a final synchronous flush.
func (f *Flusher) Close(ctx context.Context) error {
	return f.Flush(ctx)
}

func (f *Flusher) flushBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	if err := f.save(ctx); err != nil {
		f.log.Error().Err(err).Msg("Failed to save ledger")
	}
}

func (f *Flusher) save(ctx context.Context) error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	f.mu.Lock()
	if !f.dirty {
		f.mu.Unlock()
		return nil
	}
	records := f.snapshot
	f.dirty = false
	f.status.State = SyncSaving
	f.mu.Unlock()

	err := f.store.Save(ctx, records)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		// Keep the snapshot unless a newer one arrived meanwhile; the next
		// change or Close retries.
		if !f.dirty {
			f.snapshot = records
			f.dirty = true
		}
		f.status.State = SyncFailed
		f.status.LastError = err.Error()
		return err
	}

	f.status.LastError = ""
	f.status.LastSynced = f.now()
	if f.dirty {
		f.status.State = SyncPending
	} else {
		f.status.State = SyncSynced
	}
	f.log.Debug().Int("transaction_count", len(records)).Msg("Ledger saved")
	return nil
}
