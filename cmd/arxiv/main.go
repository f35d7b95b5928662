package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"papercut/config"
	"papercut/feed"
	"papercut/ingest"
	"papercut/pkg/logging"
	"papercut/process"
	"papercut/source"
	"papercut/storage"

	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app  = kingpin.New("arxiv", "extract the body text of recent arXiv papers")
	args = struct {
		query      *string
		max        *int
		settings   *string
		store      *string
		archiveDir *string
		schedule   *bool
	}{
		query:      app.Flag("query", "arXiv search query, overrides the settings file").String(),
		max:        app.Flag("max", "number of papers to fetch, overrides the settings file").Int(),
		settings:   app.Flag("settings", "YAML feed settings file").Envar("FEED_SETTINGS_PATH").String(),
		store:      app.Flag("store", "bbolt file used to skip already processed papers").Envar("STORE_PATH").String(),
		archiveDir: app.Flag("archive-dir", "keep downloaded PDFs in this directory").Envar("ARCHIVE_DIR").String(),
		schedule:   app.Flag("schedule", "keep running on the settings cron schedule").Bool(),
	}
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loadSettings := func() (config.FeedSettings, error) {
		settings, err := config.LoadFeedSettings(*args.settings)
		if err != nil {
			return settings, err
		}
		if *args.query != "" {
			settings.Query = *args.query
		}
		if *args.max > 0 {
			settings.MaxResults = *args.max
		}
		return settings, nil
	}
	settings, err := loadSettings()
	if err != nil {
		log.Fatalf("Failed to load feed settings: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// HTTP
	// =========
	httpClient, err := source.NewHttpClient(cfg.ProxyURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Fatal("failed to create http client", zap.Error(err))
	}

	// =========
	// PDF processing
	// =========
	pdfClient, err := process.NewClientFromConfig(cfg, source.NewFetcher(httpClient, logger), logger)
	if err != nil {
		logger.Fatal("failed to create pdf client", zap.Error(err))
	}

	// =========
	// Runner
	// =========
	var runnerOpts []ingest.RunnerOption
	if *args.store != "" {
		store, err := storage.OpenPaperStore(*args.store)
		if err != nil {
			logger.Fatal("failed to open paper store", zap.Error(err))
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, ingest.WithStore(store))
	}
	if *args.archiveDir != "" {
		archiver, err := source.NewArchiver(*args.archiveDir, httpClient, logger)
		if err != nil {
			logger.Fatal("failed to create archive", zap.Error(err))
		}
		runnerOpts = append(runnerOpts, ingest.WithArchive(archiver))
	}

	papers := feed.NewArxivClient(httpClient, "", logger)
	runner := ingest.NewRunner(papers, pdfClient, logger, os.Stdout, runnerOpts...)
	scheduler := ingest.NewScheduler(runner, loadSettings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========
	// Run
	// =========
	if !*args.schedule {
		if _, err := scheduler.RunOnce(ctx); err != nil {
			logger.Error("feed run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := scheduler.Start(settings.Schedule); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	<-ctx.Done()
	<-scheduler.Stop().Done()
}
