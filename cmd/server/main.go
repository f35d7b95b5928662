package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"papercut/api"
	"papercut/config"
	"papercut/pkg/logging"
	"papercut/process"
	"papercut/source"

	"go.uber.org/zap"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
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
	// Profiling
	// =========
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logger.Warn("pprof listener stopped", zap.Error(err))
		}
	}()

	// =========
	// HTTP
	// =========
	httpClient, err := source.NewHttpClient(cfg.ProxyURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Fatal("failed to create http client", zap.Error(err))
	}
	fetcher := source.NewFetcher(httpClient, logger)

	// =========
	// PDF processing
	// =========
	pdfClient, err := process.NewClientFromConfig(cfg, fetcher, logger)
	if err != nil {
		logger.Fatal("failed to create pdf client", zap.Error(err))
	}

	// =========
	// API server
	// =========
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(pdfClient, logger, cfg.AppPort)
	if err := server.Start(ctx); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
