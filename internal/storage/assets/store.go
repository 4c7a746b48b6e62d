// Package assets persists article artifacts on the local filesystem.
//
// Every article yields a pair of files keyed by its integer id: a plain-text
// raw artifact and a JSON metadata artifact. Writes overwrite idempotently,
// so re-running with the same id replaces prior content.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/corpus-crawler/internal/scrape"
)

// Artifact filename suffixes, shared with the dataset integrity checker.
const (
	RawSuffix  = "_raw.txt"
	MetaSuffix = "_meta.json"
)

// Meta is the on-disk metadata artifact schema.
type Meta struct {
	ID     int      `json:"id"`
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Date   string   `json:"date"`
	Author []string `json:"author"`
	Topics []string `json:"topics"`
}

// Store reads and writes article artifacts under one base directory.
type Store struct {
	baseDir string
}

// New creates a Store rooted at baseDir. The directory itself is created by
// Prepare, not here.
func New(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("base directory is required")
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the base directory the store writes into.
func (s *Store) Dir() string {
	return s.baseDir
}

// Prepare creates the assets directory if absent, then removes every
// contained file so a fresh run starts clean. Removal is non-recursive and
// best-effort: a file vanishing mid-sweep is not an error.
func (s *Store) Prepare() error {
	if err := os.MkdirAll(s.baseDir, 0o750); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("scan assets directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale artifact %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// SaveRaw writes the article's plain-text artifact.
func (s *Store) SaveRaw(article scrape.Article) error {
	path := filepath.Join(s.baseDir, strconv.Itoa(article.ID)+RawSuffix)
	if err := os.WriteFile(path, []byte(article.Text), 0o600); err != nil {
		return fmt.Errorf("write raw artifact %d: %w", article.ID, err)
	}
	return nil
}

// SaveMeta writes the article's metadata artifact.
func (s *Store) SaveMeta(article scrape.Article) error {
	meta := Meta{
		ID:     article.ID,
		URL:    article.URL,
		Title:  article.Title,
		Date:   article.Date.Format(scrape.DateLayout),
		Author: article.Author,
		Topics: article.Topics,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meta artifact %d: %w", article.ID, err)
	}
	path := filepath.Join(s.baseDir, strconv.Itoa(article.ID)+MetaSuffix)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write meta artifact %d: %w", article.ID, err)
	}
	return nil
}

// LoadRaw reads the plain-text artifact for id.
func (s *Store) LoadRaw(id int) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, strconv.Itoa(id)+RawSuffix))
	if err != nil {
		return "", fmt.Errorf("read raw artifact %d: %w", id, err)
	}
	return string(data), nil
}

// LoadMeta reads and decodes the metadata artifact for id back into an
// article record (without the raw text).
func (s *Store) LoadMeta(id int) (scrape.Article, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, strconv.Itoa(id)+MetaSuffix))
	if err != nil {
		return scrape.Article{}, fmt.Errorf("read meta artifact %d: %w", id, err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return scrape.Article{}, fmt.Errorf("decode meta artifact %d: %w", id, err)
	}
	date, err := time.Parse(scrape.DateLayout, meta.Date)
	if err != nil {
		return scrape.Article{}, fmt.Errorf("meta artifact %d date: %w", id, err)
	}
	return scrape.Article{
		ID:     meta.ID,
		URL:    meta.URL,
		Title:  meta.Title,
		Date:   date,
		Author: meta.Author,
		Topics: meta.Topics,
	}, nil
}

// ArtifactID extracts the integer id embedded in an artifact filename.
// The second result is false for names that are not artifacts.
func ArtifactID(name string) (int, bool) {
	var trimmed string
	switch {
	case strings.HasSuffix(name, RawSuffix):
		trimmed = strings.TrimSuffix(name, RawSuffix)
	case strings.HasSuffix(name, MetaSuffix):
		trimmed = strings.TrimSuffix(name, MetaSuffix)
	default:
		return 0, false
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
