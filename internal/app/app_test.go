// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/ganbold/unegui-scraper/internal/app"
	"github.com/ganbold/unegui-scraper/internal/publish"
)

// setupViper seeds the global Viper with a minimal working configuration.
// Tests in this package cannot run in parallel because NewApp reads the
// global Viper instance, mirroring production startup.
func setupViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("logging.environment", "development")
	viper.Set("logging.level", "debug")
	viper.Set("scraper.user_agent", "test-agent")
	viper.Set("scraper.site_origin", "https://www.unegui.mn")
	viper.Set("scraper.request_timeout", "5s")
	viper.Set("scraper.max_workers", 4)
	viper.Set("progress.log_enabled", true)
	viper.Set("progress.prometheus_enabled", false)
	viper.Set("categories", []map[string]string{{
		"key":   "apartments",
		"label": "Орон сууц зарна",
		"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/oron-suuts-zarna/",
	}})
}

func TestNewAppMinimalConfig(t *testing.T) {
	setupViper(t)

	a, err := app.NewApp(context.Background())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.GetLogger())
	require.NotNil(t, a.Scraper())
	require.NotNil(t, a.Clock())
	require.NotNil(t, a.IDGen())
	require.Len(t, a.Categories(), 1)
	require.Equal(t, 4, a.ScraperConfig().Workers)

	require.Nil(t, a.RecordSink(), "no database configured")
	require.IsType(t, publish.NoOp{}, a.Publisher(), "no pubsub configured")
	require.Empty(t, a.PublishTopic())
	require.NotNil(t, a.ProgressSink())
}

func TestNewAppMemoryArchive(t *testing.T) {
	setupViper(t)
	viper.Set("archive.backend", "memory")

	a, err := app.NewApp(context.Background())
	require.NoError(t, err)
	a.Close()
}

func TestNewAppLocalArchive(t *testing.T) {
	setupViper(t)
	viper.Set("archive.backend", "local")
	viper.Set("archive.base_dir", t.TempDir())

	a, err := app.NewApp(context.Background())
	require.NoError(t, err)
	a.Close()
}

func TestNewAppUnknownArchiveBackend(t *testing.T) {
	setupViper(t)
	viper.Set("archive.backend", "ftp")

	_, err := app.NewApp(context.Background())
	require.Error(t, err)
}

func TestNewAppGCSArchiveRequiresBucket(t *testing.T) {
	setupViper(t)
	viper.Set("archive.backend", "gcs")

	_, err := app.NewApp(context.Background())
	require.ErrorContains(t, err, "archive.bucket")
}

func TestNewAppInvalidScraperConfig(t *testing.T) {
	setupViper(t)
	viper.Set("scraper.max_workers", 51)

	_, err := app.NewApp(context.Background())
	require.Error(t, err)
}

func TestNewAppMissingCategories(t *testing.T) {
	setupViper(t)
	viper.Set("categories", []map[string]string{})

	_, err := app.NewApp(context.Background())
	require.Error(t, err)
}

func TestNewAppBadLogLevel(t *testing.T) {
	setupViper(t)
	viper.Set("logging.level", "chatty")

	_, err := app.NewApp(context.Background())
	require.Error(t, err)
}
