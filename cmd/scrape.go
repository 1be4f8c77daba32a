package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/export"
	"github.com/ganbold/unegui-scraper/internal/progress"
	"github.com/ganbold/unegui-scraper/internal/publish"
	"github.com/ganbold/unegui-scraper/internal/scraper"
)

// scrapeOptions carries the flag values of one scrape invocation.
type scrapeOptions struct {
	categories []string
	all        bool
	workers    int
	from       string
	to         string
	outputDir  string
}

// newScrapeCmd creates and configures the 'scrape' subcommand. It runs the
// full pipeline for the selected categories and writes one CSV per category.
func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes the selected categories and exports them as CSV",
		Long: `Runs the extraction pipeline for each selected category: discovers the
listing page count, collects every listing URL, fetches the detail pages
concurrently, and writes the parsed records to a timestamped CSV file.
Records from listings that fail to fetch are excluded; the batch itself
only fails when page enumeration or link collection fails.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrapeCommand(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "category key to scrape (repeatable)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "scrape every configured category")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "detail-fetch pool size 1-50 (0 uses scraper.max_workers)")
	cmd.Flags().StringVar(&opts.from, "from", "", "keep records published on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "keep records published on or before this day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "export directory (default output.dir)")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, opts *scrapeOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cats, err := selectCategories(appInstance.Categories(), opts)
	if err != nil {
		return err
	}
	filter, err := scraper.ParseDateFilter(opts.from, opts.to)
	if err != nil {
		return err
	}
	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = viper.GetString("output.dir")
	}

	sink := appInstance.ProgressSink()
	for _, cat := range cats {
		if err := scrapeOne(cmd, appInstance, cat, opts, filter, outputDir, sink); err != nil {
			return err
		}
	}
	logger.Info("scrape command finished", zap.Int("categories", len(cats)))
	return nil
}

// scrapeOne runs the pipeline for one category and exports the result.
// Enumeration, collection, and export failures abort the command; mirroring
// and event publishing are best-effort and only logged.
func scrapeOne(
	cmd *cobra.Command,
	appInstance App,
	cat scraper.Category,
	opts *scrapeOptions,
	filter *scraper.DateFilter,
	outputDir string,
	sink progress.Sink,
) error {
	ctx := cmd.Context()
	logger := appInstance.GetLogger()

	runID, err := appInstance.IDGen().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}

	result, err := appInstance.Scraper().ScrapeCategory(ctx, cat, opts.workers, sink)
	if err != nil {
		return fmt.Errorf("scrape category %s: %w", cat.Key, err)
	}
	records := filter.Apply(result.Records)

	path := filepath.Join(outputDir, export.Filename(cat.Key, opts.from, opts.to, appInstance.Clock().Now()))
	if err := export.WriteCSV(path, records); err != nil {
		return fmt.Errorf("export category %s: %w", cat.Key, err)
	}
	logger.Info("exported category",
		zap.String("category", cat.Key),
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("failed", result.Failed))

	if rs := appInstance.RecordSink(); rs != nil && len(records) > 0 {
		if err := rs.SaveRecords(ctx, runID, cat.Key, records); err != nil {
			logger.Warn("mirror records to database failed",
				zap.String("category", cat.Key), zap.Error(err))
		}
	}

	if topic := appInstance.PublishTopic(); topic != "" {
		event := publish.Event{
			JobID:      runID,
			Category:   cat.Key,
			Status:     "succeeded",
			Records:    len(records),
			Failed:     result.Failed,
			Total:      result.Total,
			DurationMS: result.Duration.Milliseconds(),
			FinishedAt: appInstance.Clock().Now(),
		}
		if _, err := appInstance.Publisher().Publish(ctx, topic, event); err != nil {
			logger.Warn("publish completion event failed",
				zap.String("category", cat.Key), zap.Error(err))
		}
	}
	return nil
}

// selectCategories resolves the --category/--all flags against the
// configured table.
func selectCategories(configured []scraper.Category, opts *scrapeOptions) ([]scraper.Category, error) {
	if opts.all {
		return configured, nil
	}
	if len(opts.categories) == 0 {
		return nil, fmt.Errorf("no categories selected: pass --category or --all")
	}
	cats := make([]scraper.Category, 0, len(opts.categories))
	for _, key := range opts.categories {
		cat, err := scraper.CategoryByKey(configured, key)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, nil
}
