// Package extractor turns fetched article pages into structured records.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/scrape"
)

// ErrInvalidDate is returned when an article page carries no datetime
// attribute or one that deviates from the strict layout. Upstream markup
// drift must surface, not get silently mis-recorded.
var ErrInvalidDate = errors.New("article date missing or malformed")

// Page markup the extractor anchors on.
const (
	headlineSelector = "[itemprop=headline]"
	dateSelector     = "[itemprop=datePublished]"
	topicsSelector   = ".field.field--name-field-tegi.field--type-entity-reference.field--label-hidden.field__items"
)

// Extractor fetches one article URL at a time and parses it into a record.
type Extractor struct {
	fetcher scrape.Fetcher
	logger  *zap.Logger
}

// New builds an Extractor.
func New(fetcher scrape.Fetcher, logger *zap.Logger) *Extractor {
	metrics.Init()
	return &Extractor{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Extract fetches url and populates an article record in two passes: body,
// then metadata. A non-success fetch is not an error; it yields the
// Unfetched arm and the run continues. A date that does not match the strict
// layout is an error, propagated to the caller.
func (e *Extractor) Extract(ctx context.Context, url string, id int) (scrape.Result, error) {
	resp, err := e.fetcher.Fetch(ctx, url)
	if err != nil || !resp.OK() {
		e.logger.Debug("article fetch unsuccessful",
			zap.String("url", url),
			zap.Int("article_id", id),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		metrics.ObserveArticle(metrics.ArticleUnfetched)
		return scrape.Unfetched{URL: url, ID: id}, nil
	}
	metrics.ObserveFetch(url, resp.StatusCode, len(resp.Body))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse article %s: %w", url, err)
	}

	article := scrape.Article{ID: id, URL: url}
	fillText(doc, &article)
	if err := fillMeta(doc, &article); err != nil {
		return nil, fmt.Errorf("article %s: %w", url, err)
	}

	metrics.ObserveArticle(metrics.ArticleExtracted)
	return scrape.Extracted{Article: article}, nil
}

// fillText runs the body pass: headline first, then every paragraph with
// non-empty text, in document order, newline-separated.
func fillText(doc *goquery.Document, article *scrape.Article) {
	parts := []string{strings.TrimSpace(doc.Find(headlineSelector).First().Text())}
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		parts = append(parts, text)
	})
	article.Text = strings.Join(parts, "\n")
}

// fillMeta runs the metadata pass: title, strict-format publication date,
// second bold-emphasis element as author, and the anchors of the tag
// container as topics.
func fillMeta(doc *goquery.Document, article *scrape.Article) error {
	article.Title = strings.TrimSpace(doc.Find(headlineSelector).First().Text())

	raw, ok := doc.Find(dateSelector).First().Attr("datetime")
	if !ok {
		return ErrInvalidDate
	}
	date, err := time.Parse(scrape.DateLayout, raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	article.Date = date

	article.Author = []string{scrape.AuthorNotFound}
	if strongs := doc.Find("strong"); strongs.Length() >= 2 {
		if author := strings.TrimSpace(strongs.Eq(1).Text()); author != "" {
			article.Author = []string{author}
		}
	}

	article.Topics = []string{}
	doc.Find(topicsSelector).First().Find("a").Each(func(_ int, sel *goquery.Selection) {
		article.Topics = append(article.Topics, strings.TrimSpace(sel.Text()))
	})

	return nil
}
