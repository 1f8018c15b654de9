// Package decktab extracts tagged tables from Excel decks into
// deterministic CSV shadow files plus a JSON index, and diffs and validates
// those extracts across snapshots.
package decktab

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dlg0/decktab/pkg/decktab/models"
	"github.com/dlg0/decktab/pkg/decktab/schema"
)

// Generator is the tool name and version stamped into index artifacts.
const Generator = "decktab/0.1.0"

// Options configures extraction and the passes built on it.
type Options struct {
	// OutputDir is the shadow output directory, absolute or relative to the
	// deck root. Defaults to "shadow".
	OutputDir string
	// SchemaPath points at a tag schema file. Empty means the embedded
	// default schema.
	SchemaPath string
	// Files restricts extraction to specific workbook paths relative to the
	// deck root. Empty means auto-discovery by deck naming conventions.
	Files []string
	// PriorIndex is an optional previous extraction snapshot. Workbooks
	// whose path and content hash match a prior entry are reused instead of
	// re-extracted. Nil disables incremental reuse.
	PriorIndex *models.Index
	// Logger receives warnings and progress. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{OutputDir: "shadow"}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) loadSchema() (*schema.Schema, error) {
	if o.SchemaPath != "" {
		return schema.Load(o.SchemaPath)
	}
	return schema.Default()
}

// outputRoot resolves the shadow directory for a deck.
func (o Options) outputRoot(deckRoot string) string {
	dir := o.OutputDir
	if dir == "" {
		dir = "shadow"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(deckRoot, dir)
}

// IndexPath returns the index artifact location under an output root.
func IndexPath(outputRoot string) string {
	return filepath.Join(outputRoot, "meta", "tables_index.json")
}
