// Package worker implements the scrape job execution loop for serve mode.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/progress"
	"github.com/ganbold/unegui-scraper/internal/publish"
	"github.com/ganbold/unegui-scraper/internal/scraper"
	"github.com/ganbold/unegui-scraper/internal/store"
)

// Dequeuer yields the next queued job ID, blocking until one is available
// or the context ends.
type Dequeuer interface {
	Dequeue(ctx context.Context) (string, error)
}

// CategoryScraper runs the extraction pipeline for one category with the
// given detail-fetch pool size.
type CategoryScraper interface {
	ScrapeCategory(ctx context.Context, cat scraper.Category, workers int, sink progress.Sink) (scraper.Result, error)
}

// Config controls Worker behavior.
type Config struct {
	// Topic is the completion event topic. Empty disables publishing.
	Topic string
}

// Worker consumes queued job IDs and executes the scrape pipeline.
type Worker struct {
	queue      Dequeuer
	jobs       store.JobStore
	pipeline   CategoryScraper
	categories []scraper.Category
	sink       progress.Sink    // optional; wrapped per job to stamp the job ID
	records    store.RecordSink // optional database mirror
	publisher  publish.Publisher
	clock      scraper.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Worker.
func New(
	queue Dequeuer,
	jobs store.JobStore,
	pipeline CategoryScraper,
	categories []scraper.Category,
	sink progress.Sink,
	records store.RecordSink,
	publisher publish.Publisher,
	clock scraper.Clock,
	cfg Config,
	logger *zap.Logger,
) (*Worker, error) {
	if queue == nil {
		return nil, errors.New("queue is required")
	}
	if jobs == nil {
		return nil, errors.New("job store is required")
	}
	if pipeline == nil {
		return nil, errors.New("scraper is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:      queue,
		jobs:       jobs,
		pipeline:   pipeline,
		categories: categories,
		sink:       sink,
		records:    records,
		publisher:  publisher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Run blocks, consuming queued jobs until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		jobID, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", jobID))
		w.processJob(ctx, jobID)
	}
}

func (w *Worker) processJob(ctx context.Context, jobID string) {
	job, err := w.jobs.GetJob(ctx, jobID)
	if err != nil {
		w.logger.Error("load job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	cat, err := scraper.CategoryByKey(w.categories, job.Parameters.Category)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return
	}
	dateFilter, err := scraper.ParseDateFilter(job.Parameters.From, job.Parameters.To)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return
	}

	if err := w.jobs.UpdateJobStatus(ctx, jobID, store.JobStatusRunning, ""); err != nil {
		w.logger.Error("update job status failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	result, err := w.pipeline.ScrapeCategory(ctx, cat, job.Parameters.Workers, w.jobSink(jobID))
	if err != nil {
		errText := err.Error()
		w.failJob(ctx, jobID, errText)
		w.publishEvent(ctx, jobID, cat.Key, store.JobStatusFailed, scraper.Result{}, errText)
		return
	}

	records := dateFilter.Apply(result.Records)
	status := store.JobStatusSucceeded
	errText := ""
	if err := w.jobs.SaveRecords(ctx, jobID, records); err != nil {
		status = store.JobStatusFailed
		errText = fmt.Sprintf("save records: %v", err)
		w.logger.Error("save records failed", zap.String("job_id", jobID), zap.Error(err))
	}
	if w.records != nil && len(records) > 0 && errText == "" {
		if err := w.records.SaveRecords(ctx, jobID, cat.Key, records); err != nil {
			w.logger.Warn("mirror records to database failed",
				zap.String("job_id", jobID),
				zap.Error(err))
		}
	}

	if err := w.jobs.UpdateJobStatus(ctx, jobID, status, errText); err != nil {
		w.logger.Error("final job status update failed", zap.String("job_id", jobID), zap.Error(err))
	}
	result.Records = records
	w.publishEvent(ctx, jobID, cat.Key, status, result, errText)
}

// jobSink stamps the job ID onto every update before forwarding it, so
// store-backed sinks can attribute progress to the right job.
func (w *Worker) jobSink(jobID string) progress.Sink {
	if w.sink == nil {
		return nil
	}
	base := w.sink
	return progress.Func(func(ctx context.Context, u progress.Update) {
		u.JobID = jobID
		base.Publish(ctx, u)
	})
}

func (w *Worker) failJob(ctx context.Context, jobID, errText string) {
	if err := w.jobs.UpdateJobStatus(ctx, jobID, store.JobStatusFailed, errText); err != nil {
		w.logger.Error("fail job status update", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (w *Worker) publishEvent(
	ctx context.Context,
	jobID string,
	category string,
	status store.JobStatus,
	result scraper.Result,
	errText string,
) {
	if w.publisher == nil || w.cfg.Topic == "" {
		return
	}
	event := publish.Event{
		JobID:      jobID,
		Category:   category,
		Status:     string(status),
		Records:    len(result.Records),
		Failed:     result.Failed,
		Total:      result.Total,
		DurationMS: result.Duration.Milliseconds(),
		FinishedAt: w.clock.Now(),
		Error:      errText,
	}
	if _, err := w.publisher.Publish(ctx, w.cfg.Topic, event); err != nil {
		w.logger.Warn("publish completion event failed",
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}
