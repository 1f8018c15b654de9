package decktab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dlg0/decktab/pkg/decktab/csvio"
	"github.com/dlg0/decktab/pkg/decktab/indexstore"
)

// Format re-canonicalizes every shadow CSV referenced by a deck's index:
// rows re-sorted by primary key, deterministic encoding rewritten, and the
// content hash in the index updated. Running Format twice yields
// byte-identical artifacts on the second run.
func Format(deckRoot string, opts Options) error {
	deckPath, err := resolveDeckRoot(deckRoot)
	if err != nil {
		return err
	}
	outRoot := opts.outputRoot(deckPath)

	indexPath := IndexPath(outRoot)
	index, err := indexstore.Read(indexPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, indexPath)
	}
	if err != nil {
		return err
	}

	tagSchema, err := opts.loadSchema()
	if err != nil {
		return err
	}

	log := opts.logger()

	keys := make([]string, 0, len(index.Tables))
	for key := range index.Tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	failed := 0
	for _, key := range keys {
		table := index.Tables[key]
		csvPath := filepath.Join(outRoot, filepath.FromSlash(table.CSVPath))

		columns, rows, err := csvio.ReadTable(csvPath)
		if err != nil {
			log.Warn("table skipped", "table", key, "error", err)
			failed++
			continue
		}
		if len(columns) == 0 {
			continue // empty table, nothing to canonicalize
		}

		// The index is authoritative for column order unless it disagrees
		// with the file, in which case the file wins and we warn.
		if !sameColumns(columns, table.Columns) {
			log.Warn("index columns differ from CSV, using CSV columns", "table", key)
		}

		primaryKeys := table.PrimaryKeys
		if len(primaryKeys) == 0 {
			primaryKeys = tagSchema.PrimaryKeys(table.TagType)
		}
		if len(primaryKeys) == 0 {
			log.Warn("no primary keys, sorting by all columns", "table", key)
			primaryKeys = columns
		}

		hash, warnings, err := csvio.WriteTable(csvPath, columns, rows, primaryKeys)
		if err != nil {
			log.Warn("table skipped", "table", key, "error", err)
			failed++
			continue
		}
		for _, warning := range warnings {
			log.Warn(warning, "table", key)
		}

		if hash != table.CSVSHA256 {
			table.CSVSHA256 = hash
			index.Tables[key] = table
		}
	}

	if err := indexstore.Write(index, indexPath); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d tables", ErrFormatIncomplete, failed, len(keys))
	}
	return nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
