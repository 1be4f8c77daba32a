// Package progress defines the update primitives and sink interfaces the
// scrape coordinator uses to report completion. One update is pushed per
// finished detail fetch and fans out to pluggable sinks such as the zap log,
// Prometheus metrics, or the job store.
package progress

import "context"

// Update is one progress notification for a scrape job. Fraction is
// completed/total clamped to [0, 1] and never decreases within a job.
type Update struct {
	JobID     string  `json:"job_id,omitempty"`
	Category  string  `json:"category"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Fraction  float64 `json:"fraction"`
}

// Sink receives updates as tasks complete. The coordinator publishes from a
// single goroutine, so implementations see updates sequentially and in
// order. A sink must never fail the scrape: problems are its own to log.
type Sink interface {
	Publish(ctx context.Context, u Update)
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, u Update)

// Publish calls f.
func (f Func) Publish(ctx context.Context, u Update) {
	f(ctx, u)
}

// Fanout broadcasts every update to a fixed set of sinks, in order.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a Fanout over the given sinks; nil entries are skipped.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish forwards the update to every sink.
func (f *Fanout) Publish(ctx context.Context, u Update) {
	for _, s := range f.sinks {
		s.Publish(ctx, u)
	}
}
