package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validDocument() map[string]any {
	return map[string]any{
		"seed_urls":                        []any{"https://example.com/news/?page=2"},
		"total_articles_to_find_and_parse": 10,
		"headers":                          map[string]any{"user-agent": "corpus-bot/0.1"},
		"encoding":                         "utf-8",
		"timeout":                          5,
		"should_verify_certificate":        true,
		"headless_mode":                    false,
	}
}

func writeDocument(t *testing.T, doc map[string]any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scraper_config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidDocumentEchoesFields(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeDocument(t, validDocument()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	seeds := cfg.SeedURLs()
	if len(seeds) != 1 || seeds[0] != "https://example.com/news/?page=2" {
		t.Fatalf("unexpected seed urls: %v", seeds)
	}
	if cfg.NumArticles() != 10 {
		t.Fatalf("expected 10 articles, got %d", cfg.NumArticles())
	}
	if got := cfg.Headers()["user-agent"]; got != "corpus-bot/0.1" {
		t.Fatalf("unexpected headers: %v", cfg.Headers())
	}
	if cfg.Encoding() != "utf-8" {
		t.Fatalf("unexpected encoding: %q", cfg.Encoding())
	}
	if cfg.Timeout() != 5 {
		t.Fatalf("unexpected timeout: %d", cfg.Timeout())
	}
	if !cfg.VerifyCertificate() || cfg.HeadlessMode() {
		t.Fatalf("unexpected flags: verify=%v headless=%v", cfg.VerifyCertificate(), cfg.HeadlessMode())
	}
}

func TestLoadAccessorsCopyReferenceFields(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeDocument(t, validDocument()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.SeedURLs()[0] = "https://mutated.example"
	cfg.Headers()["user-agent"] = "mutated"

	if cfg.SeedURLs()[0] != "https://example.com/news/?page=2" {
		t.Fatal("seed urls were mutated through the accessor")
	}
	if cfg.Headers()["user-agent"] != "corpus-bot/0.1" {
		t.Fatal("headers were mutated through the accessor")
	}
}

func TestLoadFieldValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(doc map[string]any)
		wantErr error
	}{
		{
			name:    "seed urls not a list",
			mutate:  func(doc map[string]any) { doc["seed_urls"] = "https://example.com" },
			wantErr: ErrInvalidSeedURLs,
		},
		{
			name:    "seed urls empty",
			mutate:  func(doc map[string]any) { doc["seed_urls"] = []any{} },
			wantErr: ErrInvalidSeedURLs,
		},
		{
			name:    "seed url insecure scheme",
			mutate:  func(doc map[string]any) { doc["seed_urls"] = []any{"http://example.com"} },
			wantErr: ErrInvalidSeedURLs,
		},
		{
			name:    "seed url not a string",
			mutate:  func(doc map[string]any) { doc["seed_urls"] = []any{42} },
			wantErr: ErrInvalidSeedURLs,
		},
		{
			name:    "article count boolean",
			mutate:  func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = true },
			wantErr: ErrInvalidArticleCount,
		},
		{
			name:    "article count negative",
			mutate:  func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = -5 },
			wantErr: ErrInvalidArticleCount,
		},
		{
			name:    "article count fractional",
			mutate:  func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = 10.5 },
			wantErr: ErrInvalidArticleCount,
		},
		{
			name:    "article count zero",
			mutate:  func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = 0 },
			wantErr: ErrInvalidArticleCount,
		},
		{
			name:    "article count above range",
			mutate:  func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = 151 },
			wantErr: ErrArticleCountOutOfRange,
		},
		{
			name:    "headers not a map",
			mutate:  func(doc map[string]any) { doc["headers"] = []any{"user-agent"} },
			wantErr: ErrInvalidHeaders,
		},
		{
			name:    "headers with non-string value",
			mutate:  func(doc map[string]any) { doc["headers"] = map[string]any{"retries": 3} },
			wantErr: ErrInvalidHeaders,
		},
		{
			name:    "encoding not a string",
			mutate:  func(doc map[string]any) { doc["encoding"] = 65001 },
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "verify flag not a boolean",
			mutate:  func(doc map[string]any) { doc["should_verify_certificate"] = "yes" },
			wantErr: ErrInvalidBooleanFlags,
		},
		{
			name:    "headless flag not a boolean",
			mutate:  func(doc map[string]any) { doc["headless_mode"] = 1 },
			wantErr: ErrInvalidBooleanFlags,
		},
		{
			name:    "timeout zero",
			mutate:  func(doc map[string]any) { doc["timeout"] = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout at upper bound",
			mutate:  func(doc map[string]any) { doc["timeout"] = 60 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout not an integer",
			mutate:  func(doc map[string]any) { doc["timeout"] = "5" },
			wantErr: ErrInvalidTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := validDocument()
			tt.mutate(doc)
			_, err := Load(writeDocument(t, doc))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadBoundaryValuesAccepted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{"one article", func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = 1 }},
		{"max articles", func(doc map[string]any) { doc["total_articles_to_find_and_parse"] = 150 }},
		{"one second timeout", func(doc map[string]any) { doc["timeout"] = 1 }},
		{"fifty nine second timeout", func(doc map[string]any) { doc["timeout"] = 59 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := validDocument()
			tt.mutate(doc)
			if _, err := Load(writeDocument(t, doc)); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
		})
	}
}

func TestLoadMissingKey(t *testing.T) {
	t.Parallel()

	doc := validDocument()
	delete(doc, "encoding")
	_, err := Load(writeDocument(t, doc))
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
