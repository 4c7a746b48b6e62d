// Package collyfetcher implements scrape.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/corpus-crawler/internal/scrape"
)

// Config controls collector behavior for one scraper run.
type Config struct {
	// Headers are added to every outgoing request.
	Headers map[string]string
	// Timeout is both the per-request deadline and the uniform suspension
	// applied before every single request. The throttle is deliberately
	// crude: a flat sleep, not a backoff.
	Timeout time.Duration
	// VerifyCertificate toggles TLS certificate verification.
	VerifyCertificate bool
}

// Fetcher implements scrape.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	clock         scrape.Clock
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, clk scrape.Clock) *Fetcher {
	c := colly.NewCollector(colly.Async(false))

	transport := newHTTPTransport(cfg.VerifyCertificate)
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		clock:         clk,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch sleeps for the configured throttle, then executes a single HTTP GET.
// A status-bearing response is returned as-is, success or not; only transport
// failures surface as errors. There is exactly one attempt per call.
func (f *Fetcher) Fetch(ctx context.Context, url string) (scrape.FetchResponse, error) {
	f.clock.Sleep(f.cfg.Timeout)

	var (
		result       scrape.FetchResponse
		transportErr error
	)
	start := f.clock.Now()
	collector := f.buildCollector(start, &result, &transportErr)

	err := f.runCollector(ctx, collector, url)
	switch {
	case result.StatusCode != 0:
		// The server answered; the caller decides what a non-success
		// status means.
		return result, nil
	case transportErr != nil:
		return scrape.FetchResponse{}, fmt.Errorf("fetch %s: %w", url, transportErr)
	case err != nil:
		return scrape.FetchResponse{}, err
	default:
		return result, nil
	}
}

func (f *Fetcher) buildCollector(start time.Time, result *scrape.FetchResponse, transportErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	f.configureCollectorHooks(collector, start, result, transportErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, start time.Time, result *scrape.FetchResponse, transportErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, value := range f.cfg.Headers {
			r.Headers.Set(key, value)
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = scrape.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		// Colly reports non-2xx statuses through OnError. Keep the
		// status so the caller can apply its own skip policy.
		if r != nil && r.StatusCode != 0 {
			*result = scrape.FetchResponse{
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Headers:    r.Headers.Clone(),
				Body:       append([]byte(nil), r.Body...),
				Duration:   time.Since(start),
			}
			return
		}
		*transportErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport(verifyCertificate bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: !verifyCertificate}, //nolint:gosec // disabled only when the run config opts out
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
