package models

// ExtractedTable is the in-memory tabular result of parsing one tag.
// It is created by the table parser, serialized immediately, then discarded.
type ExtractedTable struct {
	// Columns is the ordered list of canonical column names.
	Columns []string
	// Rows holds data rows; a nil value is an empty cell.
	Rows [][]*string
	// Warnings records non-fatal issues found while parsing (duplicate
	// headers, columns unknown to the schema).
	Warnings []string
}

// Empty reports whether the table has no columns and no rows.
func (t *ExtractedTable) Empty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}
