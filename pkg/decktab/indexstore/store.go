// Package indexstore persists the tables index as a single JSON artifact.
//
// The serialized form is diff-friendly under version control: object keys in
// sorted order at every level, 2-space indentation, UTF-8, LF newlines, and
// exactly one trailing newline. Writes are atomic so a crash mid-write never
// corrupts the previous valid index.
package indexstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/dlg0/decktab/pkg/decktab/models"
)

// Write serializes the index to path, creating parent directories as needed.
func Write(ix *models.Index, path string) error {
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing index %s: %w", path, err)
	}
	return nil
}

// Read loads an index artifact. Both the current array-of-tables wire shape
// and the legacy map-of-tables shape are accepted.
func Read(path string) (*models.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ix models.Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}
	return &ix, nil
}
