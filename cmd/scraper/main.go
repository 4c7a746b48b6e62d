// Package main runs one scrape from a JSON configuration file, persisting
// article artifacts into an assets directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/app"
	"github.com/JakeFAU/corpus-crawler/internal/clock/system"
	"github.com/JakeFAU/corpus-crawler/internal/config"
	"github.com/JakeFAU/corpus-crawler/internal/dataset"
	collyfetcher "github.com/JakeFAU/corpus-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/corpus-crawler/internal/logging"
	"github.com/JakeFAU/corpus-crawler/internal/storage/assets"
)

func main() {
	cfgPath := flag.String("config", "scraper_config.json", "Path to the scrape configuration file")
	assetsDir := flag.String("assets", "tmp/articles", "Directory for article artifacts")
	checkOnly := flag.Bool("check", false, "Validate the assets directory and exit without scraping")
	dev := flag.Bool("dev", false, "Use development logging")
	flag.Parse()

	logger, err := logging.New(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	if *checkOnly {
		if err := dataset.Check(*assetsDir); err != nil {
			logger.Fatal("dataset check failed", zap.String("assets_dir", *assetsDir), zap.Error(err))
		}
		logger.Info("dataset check passed", zap.String("assets_dir", *assetsDir))
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config failed", zap.String("path", *cfgPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := collyfetcher.New(collyfetcher.Config{
		Headers:           cfg.Headers(),
		Timeout:           time.Duration(cfg.Timeout()) * time.Second,
		VerifyCertificate: cfg.VerifyCertificate(),
	}, system.New())

	store, err := assets.New(*assetsDir)
	if err != nil {
		logger.Fatal("assets directory rejected", zap.String("assets_dir", *assetsDir), zap.Error(err))
	}

	if err := app.New(cfg, fetcher, store, logger).Run(ctx); err != nil {
		logger.Fatal("scrape failed", zap.Error(err))
	}
}
