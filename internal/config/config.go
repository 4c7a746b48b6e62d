// Package config loads and validates scraper configuration via Viper.
//
// Validation is deliberately strict: values are checked against the raw
// document rather than Viper's coerced view, so a boolean smuggled in as an
// article count or a fractional timeout is rejected instead of silently cast.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Validation failures, one per configuration field group. Construction either
// yields a complete Config or exactly one of these, before any network use.
var (
	ErrInvalidSeedURLs        = errors.New("seed_urls must be a non-empty list of https:// strings")
	ErrInvalidArticleCount    = errors.New("total_articles_to_find_and_parse must be a non-negative integer")
	ErrArticleCountOutOfRange = errors.New("total_articles_to_find_and_parse must be between 1 and 150")
	ErrInvalidHeaders         = errors.New("headers must be a string-to-string map")
	ErrInvalidEncoding        = errors.New("encoding must be a string")
	ErrInvalidBooleanFlags    = errors.New("should_verify_certificate and headless_mode must be booleans")
	ErrInvalidTimeout         = errors.New("timeout must be an integer strictly between 0 and 60")
)

// Bounds on the validated numeric fields.
const (
	MinArticles = 1
	MaxArticles = 150
	MaxTimeout  = 60
)

// requiredKeys are the keys the configuration document must carry. A missing
// key is a load-time failure, before field validation starts.
var requiredKeys = []string{
	"seed_urls",
	"total_articles_to_find_and_parse",
	"headers",
	"encoding",
	"timeout",
	"should_verify_certificate",
	"headless_mode",
}

// Config is an immutable snapshot of one validated scraper run. It is shared
// read-only by every downstream component; accessors copy reference fields.
type Config struct {
	seedURLs          []string
	numArticles       int
	headers           map[string]string
	encoding          string
	timeout           int
	verifyCertificate bool
	headlessMode      bool
}

// Load reads the configuration document at path and validates every field.
// Re-validation never occurs after construction.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return Config{}, fmt.Errorf("missing config key %q", key)
		}
	}

	return validate(v)
}

// validate checks fields in a fixed order and packs them into a Config.
func validate(v *viper.Viper) (Config, error) {
	seeds, err := seedURLs(v.Get("seed_urls"))
	if err != nil {
		return Config{}, err
	}

	num, ok := strictInt(v.Get("total_articles_to_find_and_parse"))
	if !ok || num < MinArticles {
		return Config{}, ErrInvalidArticleCount
	}
	if num > MaxArticles {
		return Config{}, ErrArticleCountOutOfRange
	}

	headers, err := headerMap(v.Get("headers"))
	if err != nil {
		return Config{}, err
	}

	encoding, ok := v.Get("encoding").(string)
	if !ok {
		return Config{}, ErrInvalidEncoding
	}

	verify, okVerify := v.Get("should_verify_certificate").(bool)
	headless, okHeadless := v.Get("headless_mode").(bool)
	if !okVerify || !okHeadless {
		return Config{}, ErrInvalidBooleanFlags
	}

	timeout, ok := strictInt(v.Get("timeout"))
	if !ok || timeout <= 0 || timeout >= MaxTimeout {
		return Config{}, ErrInvalidTimeout
	}

	return Config{
		seedURLs:          seeds,
		numArticles:       num,
		headers:           headers,
		encoding:          encoding,
		timeout:           timeout,
		verifyCertificate: verify,
		headlessMode:      headless,
	}, nil
}

// seedURLs checks the raw seed list: non-empty, strings only, secure scheme.
func seedURLs(raw any) ([]string, error) {
	var items []any
	switch val := raw.(type) {
	case []any:
		items = val
	case []string:
		items = make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
	default:
		return nil, ErrInvalidSeedURLs
	}
	if len(items) == 0 {
		return nil, ErrInvalidSeedURLs
	}
	seeds := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || !strings.HasPrefix(s, "https://") {
			return nil, ErrInvalidSeedURLs
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

// headerMap checks the raw headers value is a string-to-string mapping.
func headerMap(raw any) (map[string]string, error) {
	switch val := raw.(type) {
	case map[string]any:
		headers := make(map[string]string, len(val))
		for k, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, ErrInvalidHeaders
			}
			headers[k] = s
		}
		return headers, nil
	case map[string]string:
		headers := make(map[string]string, len(val))
		for k, s := range val {
			headers[k] = s
		}
		return headers, nil
	default:
		return nil, ErrInvalidHeaders
	}
}

// strictInt reports raw as an integer only if it genuinely is one. Booleans
// and fractional floats are rejected; whole-valued floats are accepted since
// JSON decoding delivers all numbers as float64.
func strictInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case bool:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// SeedURLs returns the configured starting listing-page URLs.
func (c Config) SeedURLs() []string {
	return append([]string(nil), c.seedURLs...)
}

// NumArticles returns the target number of articles to find and parse.
func (c Config) NumArticles() int {
	return c.numArticles
}

// Headers returns the request headers sent with every fetch.
func (c Config) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

// Encoding returns the text encoding name used when decoding pages.
func (c Config) Encoding() string {
	return c.encoding
}

// Timeout returns the per-request deadline, and the pre-request throttle,
// in seconds.
func (c Config) Timeout() int {
	return c.timeout
}

// VerifyCertificate reports whether TLS certificates are verified.
func (c Config) VerifyCertificate() bool {
	return c.verifyCertificate
}

// HeadlessMode reports the headless flag. The flag is validated but no
// headless rendering is performed; it is carried for config compatibility.
func (c Config) HeadlessMode() bool {
	return c.headlessMode
}
