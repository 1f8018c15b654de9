package decktab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dlg0/decktab/pkg/decktab/indexstore"
	"github.com/dlg0/decktab/pkg/decktab/models"
)

// LoadDeckIndex reads a deck's tables index artifact.
func LoadDeckIndex(deckRoot string, opts Options) (*models.Index, error) {
	deckPath, err := resolveDeckRoot(deckRoot)
	if err != nil {
		return nil, err
	}
	indexPath := IndexPath(opts.outputRoot(deckPath))

	index, err := indexstore.Read(indexPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, indexPath)
	}
	if err != nil {
		return nil, err
	}
	return index, nil
}

// Diff classifies every table key across two index snapshots.
//
// added = keys(B) - keys(A); removed = keys(A) - keys(B); a common key is
// modified when its content hashes differ, else unchanged. Every key in
// keys(A) union keys(B) lands in exactly one class, and all output lists are
// lexicographically sorted. The model is purely two-snapshot; there is no
// conflict state.
func Diff(a, b *models.Index, deckA, deckB string) models.DiffResult {
	result := models.DiffResult{
		ComparedAt:      time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		DeckA:           resolvePath(deckA),
		DeckB:           resolvePath(deckB),
		TablesAdded:     []string{},
		TablesModified:  []models.ModifiedTable{},
		TablesRemoved:   []string{},
		TablesUnchanged: []string{},
	}

	for key := range b.Tables {
		if _, ok := a.Tables[key]; !ok {
			result.TablesAdded = append(result.TablesAdded, key)
		}
	}
	for key := range a.Tables {
		if _, ok := b.Tables[key]; !ok {
			result.TablesRemoved = append(result.TablesRemoved, key)
		}
	}

	common := make([]string, 0)
	for key := range a.Tables {
		if _, ok := b.Tables[key]; ok {
			common = append(common, key)
		}
	}
	sort.Strings(common)

	for _, key := range common {
		tableA := a.Tables[key]
		tableB := b.Tables[key]
		if tableA.CSVSHA256 != tableB.CSVSHA256 {
			result.TablesModified = append(result.TablesModified, models.ModifiedTable{
				TableID: key,
				Changes: models.TableChanges{
					CSVHash:  models.ValueChange[string]{A: tableA.CSVSHA256, B: tableB.CSVSHA256},
					RowCount: models.ValueChange[int]{A: tableA.RowCount, B: tableB.RowCount},
				},
			})
		} else {
			result.TablesUnchanged = append(result.TablesUnchanged, key)
		}
	}

	sort.Strings(result.TablesAdded)
	sort.Strings(result.TablesRemoved)

	result.Summary = models.DiffSummary{
		Added:        len(result.TablesAdded),
		Modified:     len(result.TablesModified),
		Removed:      len(result.TablesRemoved),
		TotalTablesA: len(a.Tables),
		TotalTablesB: len(b.Tables),
		Unchanged:    len(result.TablesUnchanged),
	}
	return result
}

func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
