// Package app wires one scraper run end to end: reset the assets directory,
// discover article URLs, then extract and persist each article in discovery
// order.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/config"
	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/extractor"
	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/scrape"
	"github.com/JakeFAU/corpus-crawler/internal/storage/assets"
)

// App holds the collaborators for one scrape. The assets directory is an
// explicit dependency, not process-global state, so a caller owns its
// lifetime and placement.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	discoverer crawler.Discoverer
	extractor  *extractor.Extractor
	store      *assets.Store
}

// New builds a run from a validated configuration. The same fetcher serves
// both traversal and per-article extraction, preserving the uniform
// throttle across every request in the run.
func New(cfg config.Config, fetcher scrape.Fetcher, store *assets.Store, logger *zap.Logger) *App {
	metrics.Init()
	return &App{
		cfg:        cfg,
		logger:     logger,
		discoverer: crawler.New(crawler.Config{SeedURLs: cfg.SeedURLs()}, fetcher, logger.Named("crawler")),
		extractor:  extractor.New(fetcher, logger.Named("extractor")),
		store:      store,
	}
}

// Run executes the scrape. Everything is strictly sequential: listing pages,
// then articles, one fetch at a time. Article ids are assigned in the exact
// order URLs were discovered, starting at 1. A fatal error aborts the run
// immediately; per-article fetch failures do not.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Prepare(); err != nil {
		return fmt.Errorf("prepare assets: %w", err)
	}

	if err := a.discoverer.Run(ctx); err != nil {
		return fmt.Errorf("discover article urls: %w", err)
	}
	urls := a.discoverer.URLs()
	a.logger.Info("url discovery complete", zap.Int("urls", len(urls)))

	var extracted, unfetched int
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scrape aborted: %w", err)
		}
		result, err := a.extractor.Extract(ctx, url, i+1)
		if err != nil {
			return fmt.Errorf("extract article %d: %w", i+1, err)
		}
		switch r := result.(type) {
		case scrape.Extracted:
			if err := a.store.SaveRaw(r.Article); err != nil {
				return err
			}
			if err := a.store.SaveMeta(r.Article); err != nil {
				return err
			}
			extracted++
		case scrape.Unfetched:
			// Never persisted: a half-empty record must not end up
			// in the dataset as if it were complete.
			a.logger.Warn("article not fetched",
				zap.String("url", r.URL),
				zap.Int("article_id", r.ID),
			)
			unfetched++
		default:
			return fmt.Errorf("unexpected extraction result %T", result)
		}
	}

	a.logger.Info("scrape complete",
		zap.Int("extracted", extracted),
		zap.Int("unfetched", unfetched),
		zap.String("assets_dir", a.store.Dir()),
	)
	return nil
}
