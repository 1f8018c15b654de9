package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// IndexVersion is the current index schema version.
const IndexVersion = 1

// WorkbookMeta holds metadata for a single source workbook.
// Struct fields are declared in alphabetical JSON-key order so the encoder
// emits sorted keys.
type WorkbookMeta struct {
	// Hash is the full content hash of the workbook file ("sha256:<hex>").
	Hash string `json:"hash"`
	// SourcePath is the workbook path relative to the deck root.
	SourcePath string `json:"source_path"`
	// WorkbookID is the stable identifier derived from the file path stem.
	WorkbookID string `json:"workbook_id"`
}

// TableMeta holds metadata for a single extracted table.
type TableMeta struct {
	// Columns is the ordered list of column names.
	Columns []string `json:"columns"`
	// CSVPath is the shadow CSV path relative to the output root.
	CSVPath string `json:"csv_path"`
	// CSVSHA256 is the SHA-256 hex hash of the CSV file content.
	CSVSHA256 string `json:"csv_sha256"`
	// ExtractedAt is the ISO-8601 UTC extraction timestamp.
	ExtractedAt string `json:"extracted_at"`
	// LogicalName is the logical table name from the tag, empty if absent.
	LogicalName string `json:"logical_name"`
	// PrimaryKeys lists the columns forming the primary key.
	PrimaryKeys []string `json:"primary_keys"`
	// RowCount is the number of data rows (excluding the header).
	RowCount int `json:"row_count"`
	// SchemaVersion names the tag schema the table was extracted with.
	SchemaVersion string `json:"schema_version"`
	// SheetName is the sheet the table was found on.
	SheetName string `json:"sheet_name"`
	// TableID is the stable, position-independent table identifier.
	TableID string `json:"table_id"`
	// Tag is the original full tag text (e.g., "~FI_T: BaseParameters").
	Tag string `json:"tag"`
	// TagPosition is the A1-style cell reference of the tag.
	TagPosition string `json:"tag_position"`
	// TagType is the normalized tag type (e.g., "fi_t").
	TagType string `json:"tag_type"`
	// WorkbookID references an entry in Index.Workbooks.
	WorkbookID string `json:"workbook_id"`
}

// CompositeKey returns the index key "{workbook_id}/{table_id}".
func (t TableMeta) CompositeKey() string {
	return t.WorkbookID + "/" + t.TableID
}

// Index is the root registry of all extracted tables for one deck.
type Index struct {
	// Version is the index schema version.
	Version int
	// Generator is the tool name and version that produced the index.
	Generator string
	// GeneratedAt is the ISO-8601 UTC timestamp of index generation.
	GeneratedAt string
	// Workbooks maps workbook_id to workbook metadata.
	Workbooks map[string]WorkbookMeta
	// Tables maps composite key "{workbook_id}/{table_id}" to table metadata.
	Tables map[string]TableMeta
}

// NewIndex returns an empty index stamped with the current UTC time.
func NewIndex(generator string) *Index {
	return &Index{
		Version:     IndexVersion,
		Generator:   generator,
		GeneratedAt: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Workbooks:   make(map[string]WorkbookMeta),
		Tables:      make(map[string]TableMeta),
	}
}

// AddWorkbook adds or replaces a workbook entry.
func (ix *Index) AddWorkbook(meta WorkbookMeta) {
	ix.Workbooks[meta.WorkbookID] = meta
}

// AddTable adds or replaces a table entry keyed by its composite key.
func (ix *Index) AddTable(meta TableMeta) {
	ix.Tables[meta.CompositeKey()] = meta
}

// WorkbookTables returns the tables belonging to a workbook, sorted by
// composite key.
func (ix *Index) WorkbookTables(workbookID string) []TableMeta {
	keys := make([]string, 0)
	for key, table := range ix.Tables {
		if table.WorkbookID == workbookID {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	tables := make([]TableMeta, 0, len(keys))
	for _, key := range keys {
		tables = append(tables, ix.Tables[key])
	}
	return tables
}

// indexWire is the on-disk shape of Index. Tables are written as an array
// sorted by composite key so the artifact stays diff-friendly. Field order
// is alphabetical to match the sorted-keys contract.
type indexWire struct {
	GeneratedAt string                  `json:"generated_at"`
	Generator   string                  `json:"generator"`
	Tables      json.RawMessage         `json:"tables"`
	Version     int                     `json:"version"`
	Workbooks   map[string]WorkbookMeta `json:"workbooks"`
}

// MarshalJSON writes tables as an array sorted by composite key.
func (ix *Index) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(ix.Tables))
	for key := range ix.Tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tables := make([]TableMeta, 0, len(keys))
	for _, key := range keys {
		tables = append(tables, ix.Tables[key])
	}

	rawTables, err := json.Marshal(tables)
	if err != nil {
		return nil, err
	}

	workbooks := ix.Workbooks
	if workbooks == nil {
		workbooks = map[string]WorkbookMeta{}
	}

	return json.Marshal(indexWire{
		GeneratedAt: ix.GeneratedAt,
		Generator:   ix.Generator,
		Tables:      rawTables,
		Version:     ix.Version,
		Workbooks:   workbooks,
	})
}

// UnmarshalJSON accepts both the array-of-tables wire shape and the legacy
// map-of-tables shape.
func (ix *Index) UnmarshalJSON(data []byte) error {
	var wire indexWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	ix.Version = wire.Version
	ix.Generator = wire.Generator
	ix.GeneratedAt = wire.GeneratedAt
	ix.Workbooks = wire.Workbooks
	if ix.Workbooks == nil {
		ix.Workbooks = make(map[string]WorkbookMeta)
	}
	ix.Tables = make(map[string]TableMeta)

	if len(wire.Tables) == 0 {
		return nil
	}

	var asList []TableMeta
	if err := json.Unmarshal(wire.Tables, &asList); err == nil {
		for _, table := range asList {
			ix.Tables[table.CompositeKey()] = table
		}
		return nil
	}

	var asMap map[string]TableMeta
	if err := json.Unmarshal(wire.Tables, &asMap); err == nil {
		for key, table := range asMap {
			ix.Tables[key] = table
		}
		return nil
	}

	return fmt.Errorf("tables must be an array or an object")
}
