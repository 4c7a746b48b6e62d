// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal        *prometheus.CounterVec
	scraperPagesSkippedTotal *prometheus.CounterVec
	scraperArticlesTotal     *prometheus.CounterVec
	scraperBytesTotal        *prometheus.CounterVec

	once sync.Once
)

// Article outcome labels.
const (
	ArticleExtracted = "extracted"
	ArticleUnfetched = "unfetched"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		scraperPagesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_skipped_total",
				Help: "Total number of listing pages skipped after a non-success fetch.",
			},
			[]string{"site"},
		)

		scraperArticlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_articles_total",
				Help: "Total number of article extractions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch increments the page fetch metrics.
func ObserveFetch(site string, status int, bytesFetched int) {
	sanitizedSite := SanitizeSite(site)
	scraperPagesTotal.WithLabelValues(sanitizedSite, strconv.Itoa(status)).Inc()
	if bytesFetched > 0 {
		scraperBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveSkippedPage increments the skipped listing-page counter.
func ObserveSkippedPage(site string) {
	scraperPagesSkippedTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveArticle increments the article outcome counter.
func ObserveArticle(outcome string) {
	scraperArticlesTotal.WithLabelValues(outcome).Inc()
}
