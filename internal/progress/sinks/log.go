package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where no durable store is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Publish logs the update using structured fields. Completion is promoted to
// info so a production logger still shows one line per finished category.
func (s *LogSink) Publish(_ context.Context, u progress.Update) {
	fields := []zap.Field{
		zap.String("job_id", u.JobID),
		zap.String("category", u.Category),
		zap.Int("completed", u.Completed),
		zap.Int("total", u.Total),
		zap.Float64("fraction", u.Fraction),
	}
	if u.Fraction >= 1 {
		s.logger.Info("scrape progress", fields...)
		return
	}
	s.logger.Debug("scrape progress", fields...)
}
