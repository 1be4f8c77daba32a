// Package memory provides an in-memory JobStore for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ganbold/unegui-scraper/internal/scraper"
	"github.com/ganbold/unegui-scraper/internal/store"
)

// JobStore keeps jobs and records in process memory.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]store.Job
	records map[string][]scraper.Record
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    make(map[string]store.Job),
		records: make(map[string][]scraper.Record),
	}
}

// CreateJob stores a new job.
func (s *JobStore) CreateJob(_ context.Context, job store.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.New("job already exists")
	}
	s.jobs[job.ID] = job
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.Job{}, store.ErrNotFound
	}
	return job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (s *JobStore) ListJobs(_ context.Context, status *store.JobStatus, limit, offset int) ([]store.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if status != nil && job.Status != *status {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Submitted.Equal(out[j].Submitted) {
			return out[i].ID > out[j].ID
		}
		return out[i].Submitted.After(out[j].Submitted)
	})
	if offset >= len(out) {
		return []store.Job{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// UpdateJobStatus updates the status and error text for a job.
func (s *JobStore) UpdateJobStatus(_ context.Context, jobID string, status store.JobStatus, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = status
	job.ErrorText = errText
	now := time.Now().UTC()
	if status == store.JobStatusRunning && job.Started == nil {
		job.Started = pointerTime(now)
	}
	if isTerminal(status) {
		job.Finished = pointerTime(now)
	}
	s.jobs[jobID] = job
	return nil
}

// SetProgress records completion counters for a job.
func (s *JobStore) SetProgress(_ context.Context, jobID string, completed, total int, fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	job.Progress = store.Progress{Completed: completed, Total: total, Fraction: fraction}
	s.jobs[jobID] = job
	return nil
}

// SaveRecords appends scraped records for a job.
func (s *JobStore) SaveRecords(_ context.Context, jobID string, records []scraper.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[jobID] = append(s.records[jobID], records...)
	return nil
}

// ListRecords returns all records scraped by a job.
func (s *JobStore) ListRecords(_ context.Context, jobID string) ([]scraper.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[jobID]
	out := make([]scraper.Record, len(records))
	copy(out, records)
	return out, nil
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}

func isTerminal(status store.JobStatus) bool {
	switch status {
	case store.JobStatusSucceeded, store.JobStatusFailed:
		return true
	default:
		return false
	}
}
