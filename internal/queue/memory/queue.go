// Package memory provides a bounded in-memory job queue for serve mode.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrFull signals that the queue is at capacity and the job was rejected.
var ErrFull = errors.New("queue is full")

// Queue is a bounded in-memory queue of job IDs.
type Queue struct {
	ch      chan string
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan string, capacity),
	}
}

// Enqueue pushes a job ID without blocking. ErrFull is returned when the
// queue is at capacity so callers can shed load instead of waiting.
func (q *Queue) Enqueue(jobID string) error {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return errors.New("queue closed")
	}
	select {
	case q.ch <- jobID:
		return nil
	default:
		return ErrFull
	}
}

// Dequeue pops the next job ID, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case jobID, ok := <-q.ch:
		if !ok {
			return "", errors.New("queue closed")
		}
		return jobID, nil
	}
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
