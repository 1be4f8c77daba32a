// Package store declares the persistence contracts for scrape jobs and the
// records they produce. Implementations live in subpackages; this package
// must not import database drivers or concrete clients.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ganbold/unegui-scraper/internal/scraper"
)

// ErrNotFound signals that the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobParameters captures the per-job knobs requested by the client.
type JobParameters struct {
	Category string `json:"category"`
	Workers  int    `json:"workers"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// Progress tracks how far a running job has advanced through its links.
type Progress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Fraction  float64 `json:"fraction"`
}

// Job represents the metadata persisted for each submitted scrape request.
type Job struct {
	ID         string        `json:"id"`
	Status     JobStatus     `json:"status"`
	Submitted  time.Time     `json:"submitted_at"`
	Started    *time.Time    `json:"started_at,omitempty"`
	Finished   *time.Time    `json:"finished_at,omitempty"`
	ErrorText  string        `json:"error_text,omitempty"`
	Parameters JobParameters `json:"parameters"`
	Progress   Progress      `json:"progress"`
}

// JobStore persists jobs and their scraped records for the API surface.
type JobStore interface {
	// CreateJob stores a new job, typically in queued status.
	CreateJob(ctx context.Context, job Job) error
	// GetJob loads a single job or returns ErrNotFound.
	GetJob(ctx context.Context, jobID string) (Job, error)
	// ListJobs returns jobs filtered by optional status plus limit/offset,
	// newest first.
	ListJobs(ctx context.Context, status *JobStatus, limit, offset int) ([]Job, error)
	// UpdateJobStatus moves a job through its lifecycle and stamps
	// started/finished timestamps as it transitions.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string) error
	// SetProgress records link completion counters for a running job.
	SetProgress(ctx context.Context, jobID string, completed, total int, fraction float64) error
	// SaveRecords appends scraped records for a job.
	SaveRecords(ctx context.Context, jobID string, records []scraper.Record) error
	// ListRecords returns the records a job has produced so far.
	ListRecords(ctx context.Context, jobID string) ([]scraper.Record, error)
}

// RecordSink receives scraped records for out-of-band persistence, such as a
// relational database consumed by downstream analysis.
type RecordSink interface {
	SaveRecords(ctx context.Context, jobID, category string, records []scraper.Record) error
}
