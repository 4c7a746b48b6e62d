// Package crawler discovers article URLs across listing pages.
package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/scrape"
)

// Config carries the crawl parameters the discoverers need.
type Config struct {
	// SeedURLs are the configured starting listing-page URLs. Must be
	// non-empty; the validated run configuration guarantees that.
	SeedURLs []string
}

// ErrLastPageNotFound is returned when the paginated bootstrap cannot locate
// or parse the last-page control element. The run must not continue: assuming
// zero pages would silently crawl nothing.
var ErrLastPageNotFound = errors.New("last-page control element not found")

const (
	// linksPerPage is the fixed number of extraction attempts per listing
	// page. The loop runs this many times regardless of how many genuine
	// anchors the page carries, so short pages yield repeated URLs. Crawl
	// throughput depends on this bound; duplicate suppression stays
	// best-effort.
	// TODO: revisit whether extraction should stop at the number of
	// genuine anchors once downstream consumers can handle variable
	// per-page yield.
	linksPerPage = 10

	// anchorLang restricts the scan to anchors carrying this hreflang.
	anchorLang = "ru"

	// readMoreMarker is the visible text tagging an article teaser link.
	readMoreMarker = "Подробнее"

	// strippedPathPrefix is removed from anchor hrefs before the base
	// pattern is prepended.
	strippedPathPrefix = "/news"
)

// pageTemplate recognizes a seed URL ending in a page-index query template.
var pageTemplate = regexp.MustCompile(`\?page=\d+$`)

// Discoverer walks listing pages and accumulates article URLs. Run mutates
// internal state; URLs reads it back in insertion order.
type Discoverer interface {
	Run(ctx context.Context) error
	URLs() []string
}

// New picks the traversal variant from the configuration shape: a first seed
// carrying a ?page=<n> template selects the paginated crawler, anything else
// the flat one.
func New(cfg Config, fetcher scrape.Fetcher, logger *zap.Logger) Discoverer {
	if pageTemplate.MatchString(cfg.SeedURLs[0]) {
		return NewPaginatedCrawler(cfg, fetcher, logger)
	}
	return NewCrawler(cfg, fetcher, logger)
}

// crawlState is the insertion-ordered set of discovered article URLs. It is
// owned by exactly one discoverer, grows monotonically during traversal, and
// never shrinks.
type crawlState struct {
	basePattern string
	urls        []string
	seen        map[string]struct{}
}

// newCrawlState derives the base URL pattern from the first seed, truncated
// at its first query-string separator.
func newCrawlState(firstSeed string) *crawlState {
	base, _, _ := strings.Cut(firstSeed, "?")
	return &crawlState{
		basePattern: base,
		seen:        make(map[string]struct{}),
	}
}

func (s *crawlState) add(url string) {
	s.urls = append(s.urls, url)
	s.seen[url] = struct{}{}
}

func (s *crawlState) contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// rebuild turns an anchor href into a full article URL.
func (s *crawlState) rebuild(href string) string {
	return s.basePattern + strings.TrimPrefix(href, strippedPathPrefix)
}

// extractURL scans the document's language-restricted anchors for the teaser
// marker and returns one rebuilt article URL. It prefers the first candidate
// not already collected but falls back to the last marker anchor seen, so
// pages with fewer genuine candidates than the per-page bound emit repeats.
func extractURL(doc *goquery.Document, st *crawlState) string {
	var chosen string
	doc.Find("a[hreflang="+anchorLang+"]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), readMoreMarker) {
			return true
		}
		href, _ := sel.Attr("href")
		chosen = st.rebuild(href)
		return st.contains(chosen)
	})
	if chosen == "" {
		// No marker anchor at all: degrade to the bare base pattern,
		// preserving the fixed per-page yield.
		return st.rebuild("")
	}
	return chosen
}

// crawlListing fetches one listing page and runs the bounded per-page
// extraction loop against st. Non-success fetches skip the page: it
// contributes zero URLs and the run carries on.
func crawlListing(ctx context.Context, fetcher scrape.Fetcher, logger *zap.Logger, pageURL string, st *crawlState) {
	resp, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		metrics.ObserveSkippedPage(pageURL)
		logger.Warn("listing page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return
	}
	if !resp.OK() {
		metrics.ObserveSkippedPage(pageURL)
		logger.Debug("listing page skipped",
			zap.String("url", pageURL),
			zap.Int("status_code", resp.StatusCode),
		)
		return
	}
	metrics.ObserveFetch(pageURL, resp.StatusCode, len(resp.Body))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		metrics.ObserveSkippedPage(pageURL)
		logger.Warn("listing page unparsable", zap.String("url", pageURL), zap.Error(err))
		return
	}

	for i := 0; i < linksPerPage; i++ {
		st.add(extractURL(doc, st))
	}
}

// Crawler is the flat traversal: every configured seed URL is one listing
// page.
type Crawler struct {
	cfg     Config
	fetcher scrape.Fetcher
	logger  *zap.Logger
	st      *crawlState
}

// NewCrawler builds the flat crawler.
func NewCrawler(cfg Config, fetcher scrape.Fetcher, logger *zap.Logger) *Crawler {
	metrics.Init()
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		st:      newCrawlState(cfg.SeedURLs[0]),
	}
}

// Run fetches each seed listing page in order, strictly one at a time.
func (c *Crawler) Run(ctx context.Context) error {
	for _, seed := range c.cfg.SeedURLs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crawl aborted: %w", err)
		}
		crawlListing(ctx, c.fetcher, c.logger, seed, c.st)
	}
	return nil
}

// URLs returns the discovered article URLs in insertion order.
func (c *Crawler) URLs() []string {
	return append([]string(nil), c.st.urls...)
}

// PaginatedCrawler is the recursive traversal variant: it derives a
// page-template prefix from the first seed URL and synthesizes one listing
// page per index up to the advertised last page.
type PaginatedCrawler struct {
	cfg      Config
	fetcher  scrape.Fetcher
	logger   *zap.Logger
	st       *crawlState
	startURL string
}

// NewPaginatedCrawler builds the paginated crawler. Only the first seed URL
// is used, with its trailing page-index character removed.
func NewPaginatedCrawler(cfg Config, fetcher scrape.Fetcher, logger *zap.Logger) *PaginatedCrawler {
	metrics.Init()
	firstSeed := cfg.SeedURLs[0]
	return &PaginatedCrawler{
		cfg:      cfg,
		fetcher:  fetcher,
		logger:   logger,
		st:       newCrawlState(firstSeed),
		startURL: firstSeed[:len(firstSeed)-1],
	}
}

// Run bootstraps the last-page index from the bare template, then crawls
// listing pages 0 through last-1 in ascending order. A failed bootstrap is
// fatal: no pages are implicitly assumed.
func (p *PaginatedCrawler) Run(ctx context.Context) error {
	resp, err := p.fetcher.Fetch(ctx, p.startURL)
	if err != nil {
		return fmt.Errorf("pagination bootstrap fetch: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("pagination bootstrap status %d: %w", resp.StatusCode, ErrLastPageNotFound)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return fmt.Errorf("pagination bootstrap parse: %w", err)
	}
	lastPage, err := lastPageIndex(doc)
	if err != nil {
		return err
	}
	p.logger.Info("pagination bootstrap complete",
		zap.String("template", p.startURL),
		zap.Int("last_page", lastPage),
	)

	for num := 0; num < lastPage; num++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crawl aborted: %w", err)
		}
		crawlListing(ctx, p.fetcher, p.logger, p.startURL+strconv.Itoa(num), p.st)
	}
	return nil
}

// URLs returns the discovered article URLs in insertion order.
func (p *PaginatedCrawler) URLs() []string {
	return append([]string(nil), p.st.urls...)
}

// lastPageIndex reads the pager's last-page control element, whose anchor
// href encodes the highest valid page index as a bare integer.
func lastPageIndex(doc *goquery.Document) (int, error) {
	sel := doc.Find(".pager__item.pager__item--last a").First()
	if sel.Length() == 0 {
		return 0, ErrLastPageNotFound
	}
	href, _ := sel.Attr("href")
	n, err := strconv.Atoi(strings.TrimSpace(href))
	if err != nil {
		return 0, fmt.Errorf("parse last page index %q: %w", href, ErrLastPageNotFound)
	}
	return n, nil
}
