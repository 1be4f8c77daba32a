package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/export"
	"github.com/ganbold/unegui-scraper/internal/metrics"
	queuemem "github.com/ganbold/unegui-scraper/internal/queue/memory"
	"github.com/ganbold/unegui-scraper/internal/scraper"
	"github.com/ganbold/unegui-scraper/internal/store"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
)

type scrapeRequest struct {
	Category string `json:"category"`
	Workers  *int   `json:"workers"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// submitScrape handles POST /v1/scrapes. It validates the request, stores a
// queued job, and hands the job id to the worker queue. It returns 202 with
// {"job_id": ...} on success, 400 for invalid input, and 503 when the queue
// is full.
func (s *Server) submitScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	params, err := s.toJobParameters(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := s.enqueueJob(r.Context(), params)
	if err != nil {
		if errors.Is(err, queuemem.ErrFull) {
			metrics.JobRejected()
			writeError(w, http.StatusServiceUnavailable, "scrape queue is full")
			return
		}
		s.logger.Error("enqueue scrape failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to enqueue scrape")
		return
	}
	metrics.JobSubmitted()
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// listScrapes handles GET /v1/scrapes?status=&limit=&offset=. It returns
// {"jobs": [...]} newest first, or 400 for invalid filters.
func (s *Server) listScrapes(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseLimitOffset(r, defaultJobLimit, maxJobLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var status *store.JobStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		val, parseErr := parseStatus(raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		status = &val
	}
	jobs, err := s.jobs.ListJobs(r.Context(), status, limit, offset)
	if err != nil {
		s.logger.Error("list jobs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// getScrape handles GET /v1/scrapes/{job_id}. It returns {"job": {...}} on
// success or 404 when the job is unknown.
func (s *Server) getScrape(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

// getScrapeRecords handles GET /v1/scrapes/{job_id}/records?format=. The
// default format is JSON ({"job": ..., "records": [...]}); format=csv streams
// a CSV attachment instead. It returns 400 for an unknown format and 404 for
// an unknown job.
func (s *Server) getScrapeRecords(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "json", "csv":
	default:
		writeError(w, http.StatusBadRequest, "invalid format")
		return
	}

	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	records, err := s.jobs.ListRecords(r.Context(), jobID)
	if err != nil {
		s.logger.Error("list records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	if format == "csv" {
		name := export.Filename(job.Parameters.Category, job.Parameters.From, job.Parameters.To, s.clock.Now())
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		if err := export.Write(w, records); err != nil {
			// Too late for an error status; the client sees a short stream.
			s.logger.Error("stream csv failed", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job, "records": records})
}

// listCategories handles GET /v1/categories.
func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.categories})
}

func (s *Server) toJobParameters(req scrapeRequest) (store.JobParameters, error) {
	key := strings.TrimSpace(req.Category)
	if key == "" {
		return store.JobParameters{}, errors.New("category is required")
	}
	if _, err := scraper.CategoryByKey(s.categories, key); err != nil {
		return store.JobParameters{}, err
	}
	workers := valueOrDefault(req.Workers, s.cfg.DefaultWorkers)
	if workers < scraper.MinWorkers || workers > scraper.MaxWorkers {
		return store.JobParameters{}, fmt.Errorf("workers must be between %d and %d", scraper.MinWorkers, scraper.MaxWorkers)
	}
	from := strings.TrimSpace(req.From)
	to := strings.TrimSpace(req.To)
	if _, err := scraper.ParseDateFilter(from, to); err != nil {
		return store.JobParameters{}, err
	}
	return store.JobParameters{
		Category: key,
		Workers:  workers,
		From:     from,
		To:       to,
	}, nil
}

func (s *Server) enqueueJob(ctx context.Context, params store.JobParameters) (string, error) {
	jobID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	job := store.Job{
		ID:         jobID,
		Status:     store.JobStatusQueued,
		Submitted:  s.clock.Now().UTC(),
		Parameters: params,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	if err := s.queue.Enqueue(jobID); err != nil {
		if updateErr := s.jobs.UpdateJobStatus(ctx, jobID, store.JobStatusFailed, fmt.Sprintf("enqueue: %v", err)); updateErr != nil {
			s.logger.Warn("mark rejected job failed", zap.Error(updateErr))
		}
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

func valueOrDefault[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}

func parseStatus(input string) (store.JobStatus, error) {
	switch strings.ToLower(input) {
	case "queued":
		return store.JobStatusQueued, nil
	case "running":
		return store.JobStatusRunning, nil
	case "succeeded", "success":
		return store.JobStatusSucceeded, nil
	case "failed", "failure", "error":
		return store.JobStatusFailed, nil
	default:
		return "", errors.New("invalid status")
	}
}
