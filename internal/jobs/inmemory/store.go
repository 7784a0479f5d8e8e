package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dvloznov/kitab-khata/internal/jobs"
)

// DefaultRetention is how many finished export jobs a Store remembers.
const DefaultRetention = 500

// Store is an in-memory implementation of JobStore.
// Jobs are lost on restart. Once more than the retention limit of jobs have
// finished, the oldest finished ones are forgotten; pending and running jobs
// are always kept.
type Store struct {
	mu        sync.RWMutex
	byID      map[string]*jobs.ExportJob
	order     []string // insertion order, oldest first
	retention int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRetention sets how many finished jobs are kept. Zero or less keeps all.
func WithRetention(n int) StoreOption {
	return func(s *Store) { s.retention = n }
}

// NewStore creates a new in-memory job store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		byID:      make(map[string]*jobs.ExportJob),
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExportJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	snapshot := *job

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.byID[job.JobID]; !seen {
		s.order = append(s.order, job.JobID)
	}
	s.byID[job.JobID] = &snapshot
	s.prune()
	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.byID[jobID]
	if !ok {
		return nil, fmt.Errorf("GetJob %s: %w", jobID, jobs.ErrJobNotFound)
	}
	out := *stored
	return &out, nil
}

// ListJobs implements the JobStore interface.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExportJob, error) {
	s.mu.RLock()
	matched := make([]*jobs.ExportJob, 0, len(s.order))
	for _, id := range s.order {
		if stored := s.byID[id]; matches(stored, filter) {
			c := *stored
			matched = append(matched, &c)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b *jobs.ExportJob) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.JobID < b.JobID {
			return -1
		}
		if a.JobID > b.JobID {
			return 1
		}
		return 0
	})

	if filter.Offset >= len(matched) {
		return []*jobs.ExportJob{}, nil
	}
	if filter.Offset > 0 {
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateJobStatus implements the JobStore interface.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[jobID]
	if !ok {
		return fmt.Errorf("UpdateJobStatus %s: %w", jobID, jobs.ErrJobNotFound)
	}
	stored.Status = status
	if errorMsg != "" {
		stored.Error = errorMsg
	}
	s.prune()
	return nil
}

func matches(job *jobs.ExportJob, filter jobs.JobFilter) bool {
	if filter.Target != "" && job.Target != filter.Target {
		return false
	}
	return filter.Status == "" || job.Status == filter.Status
}

// prune drops the oldest finished jobs beyond the retention limit.
// Callers hold s.mu.
func (s *Store) prune() {
	if s.retention <= 0 {
		return
	}
	done := 0
	for _, id := range s.order {
		if s.byID[id].Finished() {
			done++
		}
	}
	excess := done - s.retention
	if excess <= 0 {
		return
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if excess > 0 && s.byID[id].Finished() {
			delete(s.byID, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

var _ jobs.JobStore = (*Store)(nil)
