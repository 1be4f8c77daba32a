// Package app initializes and holds long-lived application services, acting
// as a dependency injection container. It is built once at startup from the
// Viper configuration and handed to the CLI commands, which pick the pieces
// they need.
package app

import (
	"context"
	"errors"
	"fmt"

	gcstorage "cloud.google.com/go/storage"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/archive"
	archivegcs "github.com/ganbold/unegui-scraper/internal/archive/gcs"
	archivelocal "github.com/ganbold/unegui-scraper/internal/archive/local"
	archivemem "github.com/ganbold/unegui-scraper/internal/archive/memory"
	"github.com/ganbold/unegui-scraper/internal/clock/system"
	"github.com/ganbold/unegui-scraper/internal/hash/sha256"
	iduuid "github.com/ganbold/unegui-scraper/internal/id/uuid"
	"github.com/ganbold/unegui-scraper/internal/logging"
	"github.com/ganbold/unegui-scraper/internal/progress"
	"github.com/ganbold/unegui-scraper/internal/progress/sinks"
	"github.com/ganbold/unegui-scraper/internal/publish"
	pubsubpub "github.com/ganbold/unegui-scraper/internal/publish/pubsub"
	"github.com/ganbold/unegui-scraper/internal/scraper"
	"github.com/ganbold/unegui-scraper/internal/store"
	storepg "github.com/ganbold/unegui-scraper/internal/store/postgres"
)

// App holds the shared, long-lived services of the scraper: the configured
// logger, the extraction pipeline with its fetcher and optional renderer,
// the raw-page archive, the optional Postgres record mirror, and the
// completion-event publisher. It is initialized once at startup and closed
// by a Cobra hook when the command finishes.
type App struct {
	logger       *zap.Logger
	scraperCfg   scraper.Config
	categories   []scraper.Category
	clock        *system.Clock
	ids          *iduuid.Generator
	pipeline     *scraper.Scraper
	renderer     *scraper.ChromedpRenderer
	gcsClient    *gcstorage.Client
	records      store.RecordSink
	recordsClose func()
	publisher    publish.Publisher
	topic        string
	baseSinks    []progress.Sink
}

// GetLogger returns the configured zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// ScraperConfig returns the validated scraper configuration.
func (a *App) ScraperConfig() scraper.Config {
	return a.scraperCfg
}

// Categories returns the configured category table.
func (a *App) Categories() []scraper.Category {
	return a.categories
}

// Clock returns the wall clock used across the pipeline.
func (a *App) Clock() *system.Clock {
	return a.clock
}

// IDGen returns the job identifier generator.
func (a *App) IDGen() *iduuid.Generator {
	return a.ids
}

// Scraper returns the assembled extraction pipeline.
func (a *App) Scraper() *scraper.Scraper {
	return a.pipeline
}

// RecordSink returns the optional Postgres record mirror, or nil when no
// database is configured.
func (a *App) RecordSink() store.RecordSink {
	return a.records
}

// Publisher returns the completion-event publisher. It is never nil; without
// Pub/Sub configuration it is a no-op.
func (a *App) Publisher() publish.Publisher {
	return a.publisher
}

// PublishTopic returns the configured completion-event topic, or "".
func (a *App) PublishTopic() string {
	return a.topic
}

// ProgressSink fans progress updates out to the configured base sinks (log,
// Prometheus) plus any extra sinks, such as the serve-mode job store sink.
func (a *App) ProgressSink(extra ...progress.Sink) progress.Sink {
	return progress.NewFanout(append(append([]progress.Sink{}, a.baseSinks...), extra...)...)
}

// NewApp creates and initializes the App from the global Viper
// configuration. It is the central point for service initialization and
// fails fast when any required service cannot be built.
func NewApp(ctx context.Context) (*App, error) {
	logger, err := logging.New(viper.GetString("logging.environment"), viper.GetString("logging.level"))
	if err != nil {
		return nil, err
	}
	logging.SetGlobal(logger)

	cfg, err := scraper.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load scraper config: %w", err)
	}
	categories, err := scraper.LoadCategories(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	a := &App{
		logger:     logger,
		scraperCfg: cfg,
		categories: categories,
		clock:      system.New(),
		ids:        iduuid.New(),
		topic:      viper.GetString("publish.topic"),
	}

	fetcher, err := scraper.NewCollyFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	renderer, err := buildRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.renderer = renderer

	pageArchive, err := a.buildArchive(ctx)
	if err != nil {
		return nil, err
	}

	var rendererIface scraper.Renderer
	if renderer != nil {
		rendererIface = renderer
	}
	pipeline, err := scraper.New(cfg, fetcher, rendererIface, pageArchive, sha256.New(), a.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("assemble scraper: %w", err)
	}
	a.pipeline = pipeline

	if err := a.buildRecordSink(ctx); err != nil {
		return nil, err
	}
	if err := a.buildPublisher(ctx); err != nil {
		return nil, err
	}
	if err := a.buildProgressSinks(); err != nil {
		return nil, err
	}

	logger.Info("application services initialized",
		zap.Int("categories", len(categories)),
		zap.Bool("render", renderer != nil),
		zap.String("archive", viper.GetString("archive.backend")),
		zap.Bool("database", a.records != nil),
		zap.String("publish_topic", a.topic))
	return a, nil
}

// buildRenderer constructs the headless renderer when the feature is on.
// A disabled renderer is not an error; the pipeline parses static bodies.
func buildRenderer(cfg scraper.Config, logger *zap.Logger) (*scraper.ChromedpRenderer, error) {
	if !cfg.RenderEnabled {
		return nil, nil
	}
	renderer, err := scraper.NewChromedpRenderer(cfg, logger)
	switch {
	case err == nil:
		return renderer, nil
	case errors.Is(err, scraper.ErrRendererDisabled):
		logger.Warn("renderer disabled despite render.enabled; parsing static bodies only")
		return nil, nil
	default:
		return nil, fmt.Errorf("init renderer: %w", err)
	}
}

// buildArchive selects the raw-page blob store from archive.backend. An
// empty backend disables archiving entirely.
func (a *App) buildArchive(ctx context.Context) (scraper.Archiver, error) {
	backend := viper.GetString("archive.backend")
	switch backend {
	case "":
		return nil, nil
	case "noop":
		return &archive.NoOpStore{}, nil
	case "memory":
		return archivemem.NewBlobStore(), nil
	case "local":
		blobStore, err := archivelocal.New(archivelocal.Config{BaseDir: viper.GetString("archive.base_dir")})
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		return blobStore, nil
	case "gcs":
		bucket := viper.GetString("archive.bucket")
		if bucket == "" {
			return nil, fmt.Errorf("archive.backend is gcs but archive.bucket is not set")
		}
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.gcsClient = client
		blobStore, err := archivegcs.New(client, archivegcs.Config{Bucket: bucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return blobStore, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", backend)
	}
}

// buildRecordSink connects the Postgres mirror when a DSN is configured.
func (a *App) buildRecordSink(ctx context.Context) error {
	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		return nil
	}
	rs, err := storepg.NewRecordStore(ctx, storepg.RecordStoreConfig{
		DSN:             dsn,
		Table:           viper.GetString("database.table"),
		MaxConns:        viper.GetInt32("database.max_conns"),
		MinConns:        viper.GetInt32("database.min_conns"),
		MaxConnLifetime: viper.GetDuration("database.max_conn_lifetime"),
	}, a.clock)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	a.records = rs
	a.recordsClose = rs.Close
	return nil
}

// buildPublisher connects Pub/Sub when a project and topic are configured;
// otherwise completion events are discarded.
func (a *App) buildPublisher(ctx context.Context) error {
	projectID := viper.GetString("publish.project_id")
	if projectID == "" || a.topic == "" {
		a.publisher = publish.NoOp{}
		return nil
	}
	pub, err := pubsubpub.New(ctx, projectID, a.topic)
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}
	a.publisher = pub
	return nil
}

// buildProgressSinks assembles the always-on progress sinks.
func (a *App) buildProgressSinks() error {
	if viper.GetBool("progress.log_enabled") {
		a.baseSinks = append(a.baseSinks, sinks.NewLogSink(a.logger))
	}
	if viper.GetBool("progress.prometheus_enabled") {
		sink, err := sinks.NewPrometheusSink(nil)
		if err != nil {
			return fmt.Errorf("init prometheus progress sink: %w", err)
		}
		a.baseSinks = append(a.baseSinks, sink)
	}
	return nil
}

// Close shuts the services down in reverse dependency order. It is a
// best-effort teardown; individual failures are logged, not returned.
func (a *App) Close() {
	if a.renderer != nil {
		if err := a.renderer.Close(context.Background()); err != nil {
			a.logger.Warn("close renderer", zap.Error(err))
		}
	}
	if a.recordsClose != nil {
		a.recordsClose()
	}
	if closer, ok := a.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("close publisher", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("close gcs client", zap.Error(err))
		}
	}
	// Flush buffered log entries; stderr sync failures are expected on some
	// platforms and carry no signal.
	_ = a.logger.Sync()
}
