package insight

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

// DefaultTimeout bounds one insight request.
const DefaultTimeout = 30 * time.Second

// ErrBusy is returned by Start while a request is in flight.
var ErrBusy = errors.New("insight request already in flight")

// Phase is the lifecycle position of the insight request.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseInFlight Phase = "in-flight"
	PhaseResolved Phase = "resolved"
)

// Snapshot is the observable tracker state.
type Snapshot struct {
	Phase      Phase     `json:"phase"`
	Text       string    `json:"text,omitempty"`
	Failed     bool      `json:"failed,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt,omitempty"`
}

// Tracker runs at most one insight request at a time and remembers the
// last result.
type Tracker struct {
	gen     Generator
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	state Snapshot
}

// NewTracker creates an idle tracker. A non-positive timeout uses DefaultTimeout.
func NewTracker(gen Generator, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{
		gen:     gen,
		timeout: timeout,
		now:     time.Now,
		state:   Snapshot{Phase: PhaseIdle},
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start begins a request over records in the background. The returned
// channel receives the resolved snapshot once and is then closed. The
// request is detached from ctx cancellation but keeps its logger.
func (t *Tracker) Start(ctx context.Context, records []domain.Transaction) (<-chan Snapshot, error) {
	t.mu.Lock()
	if t.state.Phase == PhaseInFlight {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	t.state = Snapshot{Phase: PhaseInFlight, StartedAt: t.now()}
	t.mu.Unlock()

	done := make(chan Snapshot, 1)
	reqCtx := logger.WithContext(context.WithoutCancel(ctx), logger.FromContext(ctx))

	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(reqCtx, t.timeout)
		defer cancel()

		text := Summarize(ctx, t.gen, records)

		t.mu.Lock()
		t.state.Phase = PhaseResolved
		t.state.Text = text
		t.state.Failed = text == ErrorMessage
		t.state.ResolvedAt = t.now()
		snap := t.state
		t.mu.Unlock()

		done <- snap
	}()

	return done, nil
}

// Run starts a request and waits for it.
func (t *Tracker) Run(ctx context.Context, records []domain.Transaction) (Snapshot, error) {
	done, err := t.Start(ctx, records)
	if err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-done:
		return snap, nil
	case <-ctx.Done():
		return t.Snapshot(), ctx.Err()
	}
}
