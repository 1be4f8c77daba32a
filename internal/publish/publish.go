// Package publish defines the completion event contract for finished
// scrapes. Implementations deliver events to Google Cloud Pub/Sub or keep
// them in memory for tests.
package publish

import (
	"context"
	"time"
)

// Event describes a finished scrape for downstream consumers.
type Event struct {
	JobID      string    `json:"job_id,omitempty"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	Records    int       `json:"records"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// NoOp drops every event. It backs deployments without a message broker.
type NoOp struct{}

// Publish for NoOp does nothing and reports an empty message ID.
func (NoOp) Publish(context.Context, string, any) (string, error) {
	return "", nil
}
