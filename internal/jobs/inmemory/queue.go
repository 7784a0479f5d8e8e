package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/kitab-khata/internal/jobs"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

var errQueueClosed = errors.New("queue is closed")

// Defaults for NewQueue.
const (
	DefaultWorkers    = 2
	DefaultMaxRetries = 3
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
type Queue struct {
	jobChan   chan *jobs.ExportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool
	workers   int

	// Backoff returns the delay before retry n (1-based).
	Backoff func(retry int) time.Duration
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishExport blocks.
// workers is the number of concurrent handlers; zero uses DefaultWorkers.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:   make(chan *jobs.ExportJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
		Backoff: func(retry int) time.Duration {
			return time.Duration(retry) * time.Second
		},
	}
}

// PublishExport implements the Publisher interface. Missing fields get
// their defaults and the job is recorded as pending before it is queued.
// Workers receive a copy; the caller's job keeps its pending state and is
// never written after PublishExport returns.
func (q *Queue) PublishExport(ctx context.Context, job *jobs.ExportJob) error {
	if q.isClosed() {
		return errQueueClosed
	}
	withDefaults(job)

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishExport: save job: %w", err)
		}
	}

	queued := *job
	// closeChan is selected unlocked so Stop never waits on a blocked sender.
	select {
	case q.jobChan <- &queued:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return errQueueClosed
	}
}

func withDefaults(job *jobs.ExportJob) {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = DefaultMaxRetries
	}
}

func (q *Queue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Start implements the Consumer interface.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	if q.isClosed() {
		return errQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs one attempt of a job and records the outcome. A failed
// attempt with retries left is republished after Backoff.
func (q *Queue) processJob(ctx context.Context, job *jobs.ExportJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("target", string(job.Target)).
		Int("attempt", job.RetryCount+1).
		Logger()

	started := time.Now()
	job.Status = jobs.JobStatusRunning
	job.StartedAt = &started
	q.record(ctx, job)

	err := handler(logger.WithContext(ctx, log), job)

	finished := time.Now()
	job.CompletedAt = &finished
	retry := settle(job, err)
	q.record(ctx, job)

	switch job.Status {
	case jobs.JobStatusCompleted:
		log.Info().Str("result", job.Result).Dur("took", finished.Sub(started)).Msg("Job completed")
	case jobs.JobStatusRetrying:
		log.Warn().Err(err).Msg("Job failed, retrying")
	default:
		log.Error().Err(err).Int("retries", job.RetryCount).Msg("Job failed")
	}

	if retry {
		next := *job
		next.Status = jobs.JobStatusPending
		next.StartedAt = nil
		next.CompletedAt = nil
		time.AfterFunc(q.Backoff(next.RetryCount), func() {
			if err := q.PublishExport(ctx, &next); err != nil {
				log.Warn().Err(err).Msg("Dropped retry")
			}
		})
	}
}

// settle moves job to its post-attempt status and reports whether another
// attempt is due.
func settle(job *jobs.ExportJob, err error) bool {
	if err == nil {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		return false
	}
	job.Error = err.Error()
	if job.RetryCount >= job.MaxRetries {
		job.Status = jobs.JobStatusFailed
		return false
	}
	job.RetryCount++
	job.Status = jobs.JobStatusRetrying
	return true
}

func (q *Queue) record(ctx context.Context, job *jobs.ExportJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("job_id", job.JobID).Msg("Failed to record job state")
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
