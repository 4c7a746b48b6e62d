// Package scrape defines core types shared across the scraper subsystems.
package scrape

import (
	"context"
	"net/http"
	"time"
)

// DateLayout is the strict layout article publication dates must match.
// A page whose datetime attribute deviates from it is a parse failure,
// never silently defaulted.
const DateLayout = "2006-01-02 15:04:05"

// AuthorNotFound is the sentinel recorded when an article page carries no
// usable author element.
const AuthorNotFound = "NOT FOUND"

// Article is one fully extracted article record. The ID is a sequential
// integer assigned in URL discovery order, starting at 1.
type Article struct {
	ID     int       `json:"id"`
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	Text   string    `json:"-"`
	Date   time.Time `json:"-"`
	Author []string  `json:"author"`
	Topics []string  `json:"topics"`
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the response status is below the client-error range,
// mirroring the "treat redirects as success, skip 4xx/5xx" crawl policy.
func (r FetchResponse) OK() bool {
	return r.StatusCode > 0 && r.StatusCode < http.StatusBadRequest
}

// Fetcher issues a single throttled HTTP GET. Implementations do not retry;
// callers decide how to treat non-success statuses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Clock abstracts wall time and the crude pre-request throttle so tests can
// run without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Result is the outcome of extracting one article URL. It is a closed sum:
// either the page was fetched and parsed into an Article, or the fetch did
// not succeed and only the identity fields survive. Persistence accepts only
// the Extracted arm, so a half-empty record can never be written as complete.
type Result interface {
	isResult()
}

// Extracted carries a fully populated article.
type Extracted struct {
	Article Article
}

func (Extracted) isResult() {}

// Unfetched marks a URL whose fetch did not succeed. The run continues; the
// record is counted and logged but never persisted.
type Unfetched struct {
	URL string
	ID  int
}

func (Unfetched) isResult() {}
