package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ganbold/unegui-scraper/internal/progress"
)

// PrometheusSink exports scrape progress via Prometheus. It owns the
// per-category progress gauge and the link completion counter.
type PrometheusSink struct {
	progressRatio  *prometheus.GaugeVec
	linksCompleted *prometheus.CounterVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		progressRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unegui_scrape_progress_ratio",
			Help: "Fraction of detail links completed by the current scrape, per category.",
		}, []string{"category"}),
		linksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unegui_scrape_links_completed_total",
			Help: "Detail links completed partitioned by category.",
		}, []string{"category"}),
	}
	for _, collector := range []prometheus.Collector{
		s.progressRatio,
		s.linksCompleted,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Publish updates the collectors from a single progress update. Exactly one
// update arrives per completed link, so the counter tracks link completions.
func (s *PrometheusSink) Publish(_ context.Context, u progress.Update) {
	s.progressRatio.WithLabelValues(u.Category).Set(u.Fraction)
	s.linksCompleted.WithLabelValues(u.Category).Inc()
}
