package scraper

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/progress"
)

// Scraper runs the extraction pipeline for one category at a time. It is
// safe for concurrent use; each ScrapeCategory call owns its worker pool.
type Scraper struct {
	cfg      Config
	fetcher  Fetcher
	renderer Renderer // nil unless render escalation is enabled
	archive  Archiver // nil when raw pages are not kept
	hasher   Hasher
	clock    Clock
	logger   *zap.Logger
}

// New validates the configuration and assembles a Scraper. The renderer and
// archive are optional; everything else is required.
func New(cfg Config, fetcher Fetcher, renderer Renderer, archive Archiver, hasher Hasher, clock Clock, logger *zap.Logger) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if archive != nil && hasher == nil {
		return nil, errors.New("hasher is required when an archive is configured")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		cfg:      cfg,
		fetcher:  fetcher,
		renderer: renderer,
		archive:  archive,
		hasher:   hasher,
		clock:    clock,
		logger:   logger,
	}, nil
}

// outcome is the result of exactly one detail fetch.
type outcome struct {
	link   string
	record Record
	err    error
}

// ScrapeCategory runs the full pipeline for one category: page-count
// discovery, sequential link collection, then a bounded pool of detail
// fetches. workers sets the pool size for this run; values outside
// [MinWorkers, MaxWorkers] fall back to the configured default. Enumeration
// and collection failures abort the category; detail failures are logged and
// excluded without affecting sibling tasks. Progress is pushed to sink after
// every completed task as completed/total.
func (s *Scraper) ScrapeCategory(ctx context.Context, cat Category, workers int, sink progress.Sink) (Result, error) {
	start := s.clock.Now()
	log := s.logger.With(zap.String("category", cat.Key))

	if workers < MinWorkers || workers > MaxWorkers {
		workers = s.cfg.Workers
	}

	totalPages, err := s.LastPage(ctx, cat.URL)
	if err != nil {
		return Result{}, err
	}
	log.Info("enumerated listing pages", zap.Int("pages", totalPages))

	links, err := s.CollectLinks(ctx, cat.URL, totalPages)
	if err != nil {
		return Result{}, err
	}
	log.Info("collected listing links", zap.Int("links", len(links)))

	records, failed := s.fetchAll(ctx, cat, links, workers, sink)
	result := Result{
		Category: cat,
		Records:  records,
		Total:    len(links),
		Failed:   failed,
		Duration: s.clock.Now().Sub(start),
	}
	log.Info("category scrape finished",
		zap.Int("records", len(records)),
		zap.Int("failed", failed),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// fetchAll fans the links out to at most workers concurrent detail fetches
// and funnels the outcomes back through a single channel, so the results
// slice and the progress counter are only touched from this goroutine. Every
// link produces exactly one outcome: no retries, no duplicates, no losses.
func (s *Scraper) fetchAll(ctx context.Context, cat Category, links []string, workers int, sink progress.Sink) ([]Record, int) {
	if len(links) == 0 {
		return nil, 0
	}

	if workers > len(links) {
		workers = len(links)
	}

	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for link := range jobs {
				rec, err := s.FetchDetail(ctx, link)
				outcomes <- outcome{link: link, record: rec, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, link := range links {
			jobs <- link
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var (
		records   []Record
		failed    int
		completed int
		total     = len(links)
	)
	for out := range outcomes {
		completed++
		if out.err != nil {
			failed++
			fetchFailures.WithLabelValues(cat.Key).Inc()
			s.logger.Warn("listing fetch failed",
				zap.String("category", cat.Key),
				zap.String("url", out.link),
				zap.Error(out.err))
		} else {
			records = append(records, out.record)
			listingsScraped.WithLabelValues(cat.Key).Inc()
		}
		if sink != nil {
			fraction := float64(completed) / float64(total)
			if fraction > 1 {
				fraction = 1
			}
			sink.Publish(ctx, progress.Update{
				Category:  cat.Key,
				Completed: completed,
				Total:     total,
				Fraction:  fraction,
			})
		}
	}
	return records, failed
}
