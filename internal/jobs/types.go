package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by stores for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExport copies the ledger to an external system.
	JobTypeExport JobType = "export"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ExportTarget names where an export job writes.
type ExportTarget string

const (
	TargetBigQuery  ExportTarget = "bigquery"
	TargetNotion    ExportTarget = "notion"
	TargetGCSBackup ExportTarget = "gcs_backup"
)

// Valid reports whether t is a known target.
func (t ExportTarget) Valid() bool {
	switch t {
	case TargetBigQuery, TargetNotion, TargetGCSBackup:
		return true
	}
	return false
}

// ExportJob copies the current ledger to one target.
type ExportJob struct {
	JobID  string       `json:"job_id"`
	Target ExportTarget `json:"target"`

	// DryRun only reports what would change (Notion).
	DryRun bool `json:"dry_run,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Result is a short human-readable outcome, e.g. a snapshot id or object URI.
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is what a JobHandler receives.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ExportJob) GetID() string { return j.JobID }
func (j *ExportJob) GetType() JobType { return JobTypeExport }
func (j *ExportJob) GetStatus() JobStatus { return j.Status }

// Finished reports whether the job reached a terminal status.
func (j *ExportJob) Finished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishExport publishes an export job.
	PublishExport(ctx context.Context, job *ExportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExportJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExportJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExportJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter selects jobs for ListJobs. Zero fields match everything.
type JobFilter struct {
	Target ExportTarget
	Status JobStatus
	Limit  int
	Offset int
}
