package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/progress"
	"github.com/ganbold/unegui-scraper/internal/store"
)

// StoreSink mirrors progress counters into the job store so API clients can
// poll a running job. Store failures are logged and swallowed; progress
// reporting must never abort a scrape.
type StoreSink struct {
	jobs   store.JobStore
	logger *zap.Logger
}

// NewStoreSink constructs a StoreSink for the provided job store.
func NewStoreSink(jobs store.JobStore, logger *zap.Logger) *StoreSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSink{jobs: jobs, logger: logger}
}

// Publish forwards the counters to the job store. Updates without a job ID
// are skipped; command line scrapes publish progress without one.
func (s *StoreSink) Publish(ctx context.Context, u progress.Update) {
	if s == nil || s.jobs == nil || u.JobID == "" {
		return
	}
	if err := s.jobs.SetProgress(ctx, u.JobID, u.Completed, u.Total, u.Fraction); err != nil {
		s.logger.Warn("persist progress",
			zap.String("job_id", u.JobID),
			zap.Error(err),
		)
	}
}
