// Package dataset validates a directory of persisted article artifacts
// before any downstream consumer reads it. The check is a pass/fail gate
// with no partial-recovery path.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JakeFAU/corpus-crawler/internal/storage/assets"
)

var (
	// ErrEmptyDirectory is returned when the dataset directory holds
	// nothing at all.
	ErrEmptyDirectory = errors.New("dataset directory is empty")

	// ErrInconsistentDataset is returned when raw/meta artifact counts
	// differ, ids are not contiguous from 1, or an artifact is empty.
	ErrInconsistentDataset = errors.New("dataset is inconsistent")

	// ErrNotADirectory is returned when the dataset path exists but is
	// not a directory.
	ErrNotADirectory = errors.New("dataset path is not a directory")
)

// Check validates the artifact directory at dir. It must run to completion
// before the first record is read; any failure is fatal to the consumer.
func Check(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("dataset path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotADirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan dataset: %w", err)
	}
	if len(entries) == 0 {
		return ErrEmptyDirectory
	}

	var rawIDs, metaIDs []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id, ok := assets.ArtifactID(name)
		if !ok {
			continue
		}
		if strings.HasSuffix(name, assets.RawSuffix) {
			rawIDs = append(rawIDs, id)
		} else {
			metaIDs = append(metaIDs, id)
		}
		size, err := artifactSize(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if size == 0 {
			return fmt.Errorf("artifact %s is empty: %w", name, ErrInconsistentDataset)
		}
	}

	if len(rawIDs) != len(metaIDs) {
		return fmt.Errorf("%d raw vs %d meta artifacts: %w", len(rawIDs), len(metaIDs), ErrInconsistentDataset)
	}
	if err := checkContiguous(rawIDs, "raw"); err != nil {
		return err
	}
	return checkContiguous(metaIDs, "meta")
}

// checkContiguous verifies ids form exactly 1..N with no gaps or duplicates.
func checkContiguous(ids []int, kind string) error {
	sort.Ints(ids)
	for i, id := range ids {
		if id != i+1 {
			return fmt.Errorf("%s artifact ids are not contiguous at position %d (id %d): %w",
				kind, i+1, id, ErrInconsistentDataset)
		}
	}
	return nil
}

func artifactSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat artifact: %w", err)
	}
	return info.Size(), nil
}
