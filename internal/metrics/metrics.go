// Package metrics exposes Prometheus instrumentation for the HTTP API.
//
// Init registers the collectors on the default registry exactly once;
// Middleware observes every request with the chi route pattern as the
// label so path parameters do not explode the cardinality.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	scrapeJobsSubmitted prometheus.Counter
	scrapeJobsRejected  prometheus.Counter
)

// Init registers the HTTP collectors on the default Prometheus registry.
// Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unegui_http_requests_total",
				Help: "Total HTTP requests processed, by method and status code.",
			},
			[]string{"method", "code"},
		)
		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unegui_http_request_duration_seconds",
				Help:    "HTTP request latency, by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
		scrapeJobsSubmitted = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "unegui_scrape_jobs_submitted_total",
				Help: "Scrape jobs accepted through the API.",
			},
		)
		scrapeJobsRejected = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "unegui_scrape_jobs_rejected_total",
				Help: "Scrape jobs rejected because the queue was full.",
			},
		)
	})
}

// ObserveHTTPRequest records one finished request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// JobSubmitted increments the accepted-jobs counter.
func JobSubmitted() {
	if scrapeJobsSubmitted != nil {
		scrapeJobsSubmitted.Inc()
	}
}

// JobRejected increments the queue-full rejection counter.
func JobRejected() {
	if scrapeJobsRejected != nil {
		scrapeJobsRejected.Inc()
	}
}

// Handler returns the scrape endpoint for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments handlers with request count and latency metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		ObserveHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
