package models

// ValueChange holds a before/after pair for one table attribute.
type ValueChange[T any] struct {
	// A is the value in the base deck.
	A T `json:"a"`
	// B is the value in the modified deck.
	B T `json:"b"`
}

// TableChanges describes what differs for one modified table.
type TableChanges struct {
	// CSVHash is the content hash pair; the hash is the sole modification signal.
	CSVHash ValueChange[string] `json:"csv_hash"`
	// RowCount is the row count pair.
	RowCount ValueChange[int] `json:"row_count"`
}

// ModifiedTable is one entry in DiffResult.TablesModified.
type ModifiedTable struct {
	// Changes holds the differing attributes.
	Changes TableChanges `json:"changes"`
	// TableID is the composite key "{workbook_id}/{table_id}".
	TableID string `json:"table_id"`
}

// DiffSummary holds the diff's aggregate counts.
type DiffSummary struct {
	Added        int `json:"added"`
	Modified     int `json:"modified"`
	Removed      int `json:"removed"`
	TotalTablesA int `json:"total_tables_a"`
	TotalTablesB int `json:"total_tables_b"`
	Unchanged    int `json:"unchanged"`
}

// DiffResult classifies every table key across two index snapshots.
// Lists are lexicographically sorted for determinism; the result is computed
// fresh on every invocation and never persisted by the engine itself.
type DiffResult struct {
	// ComparedAt is the ISO-8601 UTC comparison timestamp.
	ComparedAt string `json:"compared_at"`
	// DeckA is the resolved path of the base deck.
	DeckA string `json:"deck_a"`
	// DeckB is the resolved path of the modified deck.
	DeckB string `json:"deck_b"`
	// Summary holds the aggregate counts.
	Summary DiffSummary `json:"summary"`
	// TablesAdded lists keys present only in B.
	TablesAdded []string `json:"tables_added"`
	// TablesModified lists common keys whose content hashes differ.
	TablesModified []ModifiedTable `json:"tables_modified"`
	// TablesRemoved lists keys present only in A.
	TablesRemoved []string `json:"tables_removed"`
	// TablesUnchanged lists common keys with identical content hashes.
	TablesUnchanged []string `json:"tables_unchanged"`
}

// HasChanges reports whether any table was added, removed, or modified.
func (d DiffResult) HasChanges() bool {
	return d.Summary.Added > 0 || d.Summary.Removed > 0 || d.Summary.Modified > 0
}
