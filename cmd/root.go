// Package cmd defines and implements the CLI commands for the
// unegui-scraper executable.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/app"
	"github.com/ganbold/unegui-scraper/internal/clock/system"
	iduuid "github.com/ganbold/unegui-scraper/internal/id/uuid"
	"github.com/ganbold/unegui-scraper/internal/logging"
	"github.com/ganbold/unegui-scraper/internal/progress"
	"github.com/ganbold/unegui-scraper/internal/publish"
	"github.com/ganbold/unegui-scraper/internal/scraper"
	"github.com/ganbold/unegui-scraper/internal/store"
	"github.com/ganbold/unegui-scraper/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface the commands use. This allows us to
// inject a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	ScraperConfig() scraper.Config
	Scraper() *scraper.Scraper
	Categories() []scraper.Category
	Clock() *system.Clock
	IDGen() *iduuid.Generator
	RecordSink() store.RecordSink
	Publisher() publish.Publisher
	PublishTopic() string
	ProgressSink(extra ...progress.Sink) progress.Sink
}

// newApp is the application factory. It's a variable so we can replace it
// with a mock factory in our tests.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unegui-scraper",
		Short: "Extracts structured listing records from the unegui.mn classifieds site.",
		Long: `unegui-scraper walks a category of unegui.mn listings: it discovers the
page count, collects listing URLs across every page, fetches each detail
page through a bounded worker pool, and aggregates the parsed records for
CSV export, Postgres mirroring, or the serve-mode API.`,

		// This hook runs AFTER config is loaded but BEFORE the subcommand's
		// RunE, so every subcommand sees a fully built application.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// This hook ensures services are shut down gracefully.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/unegui-scraper, $HOME/.unegui-scraper)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
