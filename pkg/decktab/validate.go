package decktab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlg0/decktab/pkg/decktab/csvio"
	"github.com/dlg0/decktab/pkg/decktab/indexstore"
	"github.com/dlg0/decktab/pkg/decktab/models"
	"github.com/dlg0/decktab/pkg/decktab/schema"
)

// ValidationResult collects the findings of a validation pass.
type ValidationResult struct {
	// Errors are hard failures: the deck does not satisfy its schema.
	Errors []string
	// Warnings are advisory findings that do not fail validation.
	Warnings []string
	// TablesChecked counts the tables examined.
	TablesChecked int
}

// OK reports whether validation passed.
func (r *ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks every shadow table against the index and the tag schema.
//
// Hard errors: missing CSV, column-set mismatch between artifact and index,
// absent required columns, NULL primary-key values, and duplicate primary
// keys. Unknown tag types, unknown columns, and declared key columns absent
// from a table are warnings. The same findings are warnings during
// extraction; here they are enforced.
func Validate(deckRoot string, opts Options) (*ValidationResult, error) {
	deckPath, err := resolveDeckRoot(deckRoot)
	if err != nil {
		return nil, err
	}
	outRoot := opts.outputRoot(deckPath)

	indexPath := IndexPath(outRoot)
	index, err := indexstore.Read(indexPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, indexPath)
	}
	if err != nil {
		return nil, err
	}

	tagSchema, err := opts.loadSchema()
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{}

	keys := make([]string, 0, len(index.Tables))
	for key := range index.Tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		table := index.Tables[key]
		result.TablesChecked++

		csvPath := filepath.Join(outRoot, filepath.FromSlash(table.CSVPath))
		columns, rows, err := csvio.ReadTable(csvPath)
		if os.IsNotExist(err) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: CSV file not found: %s", key, table.CSVPath))
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to read CSV: %v", key, err))
			continue
		}

		if len(columns) == 0 {
			if table.RowCount != 0 || len(table.Columns) != 0 {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"%s: CSV is empty but index expects %d rows and %d columns",
					key, table.RowCount, len(table.Columns)))
			}
			continue
		}

		validateTable(tagSchema, table, columns, rows, key, result)
	}

	return result, nil
}

func validateTable(
	tagSchema *schema.Schema,
	table models.TableMeta,
	columns []string,
	rows [][]*string,
	key string,
	result *ValidationResult,
) {
	if !sameColumns(columns, table.Columns) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%s: column mismatch - CSV has [%s], index expects [%s]",
			key, strings.Join(columns, ", "), strings.Join(table.Columns, ", ")))
	}

	colSet := make(map[string]bool, len(columns))
	for _, col := range columns {
		colSet[col] = true
	}

	if !tagSchema.HasTag(table.TagType) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: unknown tag type %q - skipping schema checks", key, table.TagType))
	} else {
		for _, col := range columns {
			if _, ok := tagSchema.CanonicalName(table.TagType, col); !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"%s: unknown column %q for tag %q", key, col, table.TagType))
			}
		}
		for _, required := range tagSchema.RequiredFields(table.TagType) {
			if !colSet[required] {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"%s: required column %q missing", key, required))
			}
		}
	}

	// A declared key column may legitimately be absent (the schema declares
	// more query fields than a given table uses); key checks run on the
	// columns that are present.
	pkIdx := make([]int, 0, len(table.PrimaryKeys))
	pkNames := make([]string, 0, len(table.PrimaryKeys))
	for _, pk := range table.PrimaryKeys {
		idx := indexOf(columns, pk)
		if idx < 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s: primary key column %q not present in CSV", key, pk))
			continue
		}
		pkIdx = append(pkIdx, idx)
		pkNames = append(pkNames, pk)
	}
	if len(pkIdx) == 0 {
		return
	}

	// NULL primary-key cells. Data rows start at CSV line 2 (header is 1).
	for i, idx := range pkIdx {
		var nullRows []int
		for rowNum, row := range rows {
			if idx >= len(row) || row[idx] == nil {
				nullRows = append(nullRows, rowNum+2)
			}
		}
		if len(nullRows) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"%s: NULL values in primary key column %q at CSV rows %s",
				key, pkNames[i], formatRows(nullRows)))
		}
	}

	// Duplicate primary-key tuples.
	seen := make(map[string]int, len(rows))
	var dupRows []int
	for rowNum, row := range rows {
		parts := make([]string, len(pkIdx))
		for i, idx := range pkIdx {
			if idx < len(row) && row[idx] != nil {
				parts[i] = *row[idx]
			}
		}
		tuple := strings.Join(parts, "\x1f")
		if first, ok := seen[tuple]; ok {
			if first >= 0 {
				dupRows = append(dupRows, first+2)
				seen[tuple] = -1
			}
			dupRows = append(dupRows, rowNum+2)
		} else {
			seen[tuple] = rowNum
		}
	}
	if len(dupRows) > 0 {
		sort.Ints(dupRows)
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%s: duplicate primary keys at CSV rows %s", key, formatRows(dupRows)))
	}
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// formatRows renders up to five row numbers, then a count of the rest.
func formatRows(rows []int) string {
	const maxShown = 5
	shown := rows
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	parts := make([]string, len(shown))
	for i, r := range shown {
		parts[i] = fmt.Sprintf("%d", r)
	}
	s := strings.Join(parts, ", ")
	if len(rows) > maxShown {
		s += fmt.Sprintf(" ... (+%d more)", len(rows)-maxShown)
	}
	return s
}
