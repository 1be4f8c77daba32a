package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Worker-count bounds for the detail-fetch pool. DefaultWorkers applies when
// a scrape does not name a pool size.
const (
	MinWorkers     = 1
	MaxWorkers     = 50
	DefaultWorkers = 20
)

// Config captures every configuration knob that influences a scrape run.
// All values originate from Viper so the scraper can be configured via files,
// env vars, or CLI flags.
type Config struct {
	UserAgent            string
	SiteOrigin           string
	RequestTimeout       time.Duration
	Workers              int
	RenderEnabled        bool
	RenderTimeout        time.Duration
	RenderMaxConcurrency int
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		UserAgent:            v.GetString("scraper.user_agent"),
		SiteOrigin:           v.GetString("scraper.site_origin"),
		RequestTimeout:       v.GetDuration("scraper.request_timeout"),
		Workers:              v.GetInt("scraper.max_workers"),
		RenderEnabled:        v.GetBool("render.enabled"),
		RenderTimeout:        v.GetDuration("render.timeout"),
		RenderMaxConcurrency: v.GetInt("render.max_concurrency"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("scraper.user_agent must be set")
	}
	if c.SiteOrigin == "" {
		return fmt.Errorf("scraper.site_origin must be set")
	}
	if strings.HasSuffix(c.SiteOrigin, "/") {
		return fmt.Errorf("scraper.site_origin must not end with a slash")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("scraper.max_workers must be between %d and %d, got %d", MinWorkers, MaxWorkers, c.Workers)
	}
	if c.RenderEnabled {
		if c.RenderTimeout <= 0 {
			return fmt.Errorf("render.timeout must be > 0")
		}
		if c.RenderMaxConcurrency < 1 {
			return fmt.Errorf("render.max_concurrency must be >= 1")
		}
	}
	return nil
}

// LoadCategories reads the configured category table. Every entry needs a
// key, a display label, and a base listing URL.
func LoadCategories(v *viper.Viper) ([]Category, error) {
	var cats []Category
	if err := v.UnmarshalKey("categories", &cats); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("categories must include at least one entry")
	}
	seen := make(map[string]struct{}, len(cats))
	for i, c := range cats {
		if c.Key == "" || c.Label == "" || c.URL == "" {
			return nil, fmt.Errorf("categories[%d] must set key, label, and url", i)
		}
		if _, ok := seen[c.Key]; ok {
			return nil, fmt.Errorf("categories contains duplicate key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return cats, nil
}

// CategoryByKey finds one category in the configured table.
func CategoryByKey(cats []Category, key string) (Category, error) {
	for _, c := range cats {
		if c.Key == key {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("unknown category %q", key)
}
