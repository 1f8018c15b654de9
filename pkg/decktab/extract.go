package decktab

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dlg0/decktab/pkg/decktab/csvio"
	"github.com/dlg0/decktab/pkg/decktab/grid"
	"github.com/dlg0/decktab/pkg/decktab/ids"
	"github.com/dlg0/decktab/pkg/decktab/indexstore"
	"github.com/dlg0/decktab/pkg/decktab/models"
	"github.com/dlg0/decktab/pkg/decktab/parser"
	"github.com/dlg0/decktab/pkg/decktab/schema"
)

// ExtractResult is the outcome of one extraction run.
type ExtractResult struct {
	// Index is the full registry written to the output root.
	Index *models.Index
	// Extracted lists workbook ids that were freshly extracted.
	Extracted []string
	// Reused lists workbook ids carried forward unchanged from the prior
	// snapshot.
	Reused []string
}

// Extract scans every workbook in a deck for tagged tables and writes
// canonical CSV shadow files plus the tables index.
//
// Workbooks are processed sequentially in sorted path order. A failure on
// one table is logged and that table skipped; a failure opening a workbook
// skips the workbook. The run only fails outright when the deck root is
// unusable, the schema cannot load, or the index cannot be written.
func Extract(deckRoot string, opts Options) (*ExtractResult, error) {
	deckPath, err := resolveDeckRoot(deckRoot)
	if err != nil {
		return nil, err
	}
	outRoot := opts.outputRoot(deckPath)

	tagSchema, err := opts.loadSchema()
	if err != nil {
		return nil, err
	}

	workbookPaths, err := findWorkbooks(deckPath, opts.Files)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	index := models.NewIndex(Generator)
	result := &ExtractResult{Index: index}

	for _, wbPath := range workbookPaths {
		relPath, err := filepath.Rel(deckPath, wbPath)
		if err != nil {
			relPath = wbPath
		}
		relPath = filepath.ToSlash(relPath)

		contentHash, err := hashFile(wbPath)
		if err != nil {
			log.Warn("cannot hash workbook, skipping", "workbook", relPath, "error", err)
			continue
		}

		workbookID := ids.WorkbookID(wbPath)
		meta := models.WorkbookMeta{
			Hash:       contentHash,
			SourcePath: relPath,
			WorkbookID: workbookID,
		}

		if reuseWorkbook(index, opts.PriorIndex, meta, outRoot) {
			log.Info("workbook unchanged, reusing prior extraction", "workbook", relPath)
			result.Reused = append(result.Reused, workbookID)
			continue
		}

		index.AddWorkbook(meta)
		if err := extractWorkbook(wbPath, meta, index, tagSchema, outRoot, opts); err != nil {
			log.Warn("workbook skipped", "workbook", relPath, "error", err)
			continue
		}
		result.Extracted = append(result.Extracted, workbookID)
	}

	if err := indexstore.Write(index, IndexPath(outRoot)); err != nil {
		return nil, err
	}
	return result, nil
}

// reuseWorkbook copies a prior snapshot's workbook and table entries into
// the index when the workbook's path and content hash are unchanged and
// every shadow CSV still exists. Returns false when anything is stale.
func reuseWorkbook(index *models.Index, prior *models.Index, meta models.WorkbookMeta, outRoot string) bool {
	if prior == nil {
		return false
	}

	prev, ok := prior.Workbooks[meta.WorkbookID]
	if !ok || prev.SourcePath != meta.SourcePath || prev.Hash != meta.Hash {
		return false
	}

	tables := prior.WorkbookTables(meta.WorkbookID)
	for _, table := range tables {
		if _, err := os.Stat(filepath.Join(outRoot, filepath.FromSlash(table.CSVPath))); err != nil {
			return false
		}
	}

	index.AddWorkbook(prev)
	for _, table := range tables {
		index.AddTable(table)
	}
	return true
}

// extractWorkbook runs the full pipeline for one workbook: scan each sheet
// for tags, detect boundaries, parse tables, and serialize them.
func extractWorkbook(
	wbPath string,
	meta models.WorkbookMeta,
	index *models.Index,
	tagSchema *schema.Schema,
	outRoot string,
	opts Options,
) error {
	log := opts.logger()

	wb, err := grid.OpenWorkbook(wbPath)
	if err != nil {
		return NewExtractionError(meta.SourcePath, "", "open", err)
	}
	defer wb.Close()

	extractedAt := time.Now().UTC().Format("2006-01-02T15:04:05Z")

	for _, sheetName := range wb.SheetNames() {
		g, err := wb.Sheet(sheetName)
		if err != nil {
			log.Warn("sheet skipped", "workbook", meta.SourcePath, "sheet", sheetName, "error", err)
			continue
		}

		tags := parser.ScanTags(g, sheetName)
		tagCols := parser.TagColumnsByRow(tags)

		for _, tag := range tags {
			if !tagSchema.HasTag(tag.Type) {
				log.Warn("unknown tag type", "workbook", meta.SourcePath, "sheet", sheetName, "tag", tag.Text)
			}

			otherCols := make(map[int]bool, len(tagCols[tag.Row]))
			for col := range tagCols[tag.Row] {
				if col != tag.Col {
					otherCols[col] = true
				}
			}

			table := parser.ParseTable(g, tag, tagSchema, otherCols)
			for _, warning := range table.Warnings {
				log.Warn(warning, "workbook", meta.SourcePath, "sheet", sheetName, "tag", tag.Text)
			}

			primaryKeys := tagSchema.PrimaryKeys(tag.Type)
			if len(primaryKeys) == 0 {
				primaryKeys = append([]string{}, table.Columns...)
			}

			tableID := ids.TableID(sheetName, tag.Type, tag.LogicalName)
			csvRel := filepath.ToSlash(filepath.Join("tables", meta.WorkbookID, tableID+".csv"))
			csvAbs := filepath.Join(outRoot, "tables", meta.WorkbookID, tableID+".csv")

			hash, warnings, err := csvio.WriteTable(csvAbs, table.Columns, table.Rows, primaryKeys)
			if err != nil {
				log.Warn("table skipped", "table", tableID, "error",
					NewExtractionError(meta.SourcePath, sheetName, "write", err))
				continue
			}
			for _, warning := range warnings {
				log.Warn(warning, "table", tableID)
			}

			index.AddTable(models.TableMeta{
				Columns:       table.Columns,
				CSVPath:       csvRel,
				CSVSHA256:     hash,
				ExtractedAt:   extractedAt,
				LogicalName:   tag.LogicalName,
				PrimaryKeys:   primaryKeys,
				RowCount:      len(table.Rows),
				SchemaVersion: tagSchema.Version,
				SheetName:     sheetName,
				TableID:       tableID,
				Tag:           tag.Text,
				TagPosition:   tag.Position(),
				TagType:       tag.Type,
				WorkbookID:    meta.WorkbookID,
			})
		}
	}
	return nil
}

func resolveDeckRoot(deckRoot string) (string, error) {
	deckPath, err := filepath.Abs(deckRoot)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(deckPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrDeckNotFound, deckRoot)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDeckNotDir, deckRoot)
	}
	return deckPath, nil
}

// findWorkbooks discovers deck workbooks. With an explicit file list, only
// existing Excel files from that list are used. Otherwise discovery follows
// deck naming conventions: any workbook at the root, scenario files under
// SuppXLS/ and SuppXLS/Trades/, and templates under SubRES_Tmpl/. Excel lock
// files ("~$...") are always skipped. Results are sorted for deterministic
// processing order.
func findWorkbooks(deckPath string, files []string) ([]string, error) {
	var paths []string

	if len(files) > 0 {
		for _, f := range files {
			p := filepath.Join(deckPath, filepath.FromSlash(f))
			if !isExcelFile(p) {
				continue
			}
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
			}
		}
	} else {
		patterns := []string{
			"*.xlsx",
			"*.xls",
			filepath.Join("SuppXLS", "Scen_*.xlsx"),
			filepath.Join("SuppXLS", "Scen_*.xls"),
			filepath.Join("SuppXLS", "Trades", "Scen*.xlsx"),
			filepath.Join("SuppXLS", "Trades", "Scen*.xls"),
			filepath.Join("SubRES_Tmpl", "SubRES_*.xlsx"),
			filepath.Join("SubRES_Tmpl", "SubRES_*.xls"),
		}
		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(deckPath, pattern))
			if err != nil {
				return nil, err
			}
			paths = append(paths, matches...)
		}
	}

	filtered := paths[:0]
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), "~$") {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.Strings(filtered)
	return filtered, nil
}

func isExcelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// hashFile returns "sha256:<hex>" of the file content, hashed in chunks.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
