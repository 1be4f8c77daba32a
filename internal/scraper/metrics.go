package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// indexPagesFetched counts category index pages retrieved during
	// enumeration and link collection.
	indexPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unegui_index_pages_fetched_total",
		Help: "The total number of category index pages fetched.",
	})
	// listingsScraped counts detail pages that produced a record.
	listingsScraped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unegui_listings_scraped_total",
		Help: "The total number of listings successfully scraped.",
	}, []string{"category"})
	// fetchFailures counts detail fetches that were excluded from the result.
	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unegui_listing_failures_total",
		Help: "The total number of listing fetches that failed.",
	}, []string{"category"})
	// fetchDuration observes wall time per HTTP fetch, successful or not.
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "unegui_fetch_duration_seconds",
		Help:    "Duration of individual page fetches.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)
