package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/api"
	"github.com/ganbold/unegui-scraper/internal/progress/sinks"
	queuemem "github.com/ganbold/unegui-scraper/internal/queue/memory"
	storemem "github.com/ganbold/unegui-scraper/internal/store/memory"
	"github.com/ganbold/unegui-scraper/internal/worker"
)

// newServeCmd creates and configures the 'serve' subcommand. It exposes the
// scrape pipeline behind an HTTP API: clients submit category scrape jobs,
// poll their progress, and download the resulting records.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the scrape job HTTP API",
		Long: `Starts an HTTP server that accepts scrape jobs for the configured
categories, executes them on background runners, and serves job status,
progress, and scraped records. Jobs queue on a bounded in-memory queue;
the server sheds load with 503 when the queue is full.`,

		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	jobs := storemem.NewJobStore()
	queue := queuemem.NewQueue(viper.GetInt("server.queue_depth"))
	sink := appInstance.ProgressSink(sinks.NewStoreSink(jobs, logger))

	runner, err := worker.New(
		queue,
		jobs,
		appInstance.Scraper(),
		appInstance.Categories(),
		sink,
		appInstance.RecordSink(),
		appInstance.Publisher(),
		appInstance.Clock(),
		worker.Config{Topic: appInstance.PublishTopic()},
		logger,
	)
	if err != nil {
		return fmt.Errorf("init job runner: %w", err)
	}

	server := api.NewServer(
		jobs,
		queue,
		appInstance.Categories(),
		appInstance.IDGen(),
		appInstance.Clock(),
		api.Config{
			RequestTimeout: viper.GetDuration("server.request_timeout"),
			APIKey:         viper.GetString("server.api_key"),
			DefaultWorkers: appInstance.ScraperConfig().Workers,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	concurrency := viper.GetInt("server.concurrency")
	if concurrency < 1 {
		concurrency = 1
	}
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Run(ctx)
		}()
	}

	addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}

	// Runners stop once the signal context is canceled; a scrape already in
	// flight runs to completion first.
	queue.Close()
	wg.Wait()
	logger.Info("serve command finished")
	return errIfNotClosed(<-serveErr)
}

func errIfNotClosed(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server: %w", err)
}
