package indexstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlg0/decktab/pkg/decktab/models"
)

func sampleIndex() *models.Index {
	ix := models.NewIndex("decktab/0.1.0")
	ix.GeneratedAt = "2026-01-15T10:30:00Z"
	ix.AddWorkbook(models.WorkbookMeta{
		Hash:       "sha256:abc123",
		SourcePath: "VT_REG_PRI_V01.xlsx",
		WorkbookID: "VT_REG_PRI_V01",
	})
	ix.AddTable(models.TableMeta{
		Columns:       []string{"Region", "Prozeß", "Value"},
		CSVPath:       "tables/VT_REG_PRI_V01/processes__fi_t.csv",
		CSVSHA256:     "deadbeef",
		ExtractedAt:   "2026-01-15T10:30:00Z",
		PrimaryKeys:   []string{"Region"},
		RowCount:      2,
		SchemaVersion: "veda-tags-2024",
		SheetName:     "Processes",
		TableID:       "processes__fi_t",
		Tag:           "~FI_T",
		TagPosition:   "B2",
		TagType:       "fi_t",
		WorkbookID:    "VT_REG_PRI_V01",
	})
	return ix
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta", "tables_index.json")
	ix := sampleIndex()

	require.NoError(t, Write(ix, path))

	got, err := Read(path)
	require.NoError(t, err)
	if diff := cmp.Diff(ix, got); diff != "" {
		t.Fatalf("index changed across round trip (-want +got):\n%s", diff)
	}
}

func TestWriteCanonicalBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables_index.json")
	require.NoError(t, Write(sampleIndex(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasSuffix(text, "}\n"), "exactly one trailing newline")
	assert.NotContains(t, text, "\r\n", "LF only")
	assert.Contains(t, text, "  \"generated_at\"", "2-space indentation")
	assert.Contains(t, text, "Prozeß", "non-ASCII stays literal UTF-8")

	// Top-level keys appear in sorted order.
	order := []string{"\"generated_at\"", "\"generator\"", "\"tables\"", "\"version\"", "\"workbooks\""}
	last := -1
	for _, key := range order {
		pos := strings.Index(text, key)
		require.Greater(t, pos, last, "%s out of order", key)
		last = pos
	}
}

func TestWriteDeterministic(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.json")
	pathB := filepath.Join(dir, "b.json")

	require.NoError(t, Write(sampleIndex(), pathA))
	require.NoError(t, Write(sampleIndex(), pathB))

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReadLegacyMapTables(t *testing.T) {
	legacy := `{
  "generated_at": "2025-01-01T00:00:00Z",
  "generator": "decktab/0.0.9",
  "tables": {
    "wb/sheet__fi_t": {
      "columns": ["Region"],
      "csv_path": "tables/wb/sheet__fi_t.csv",
      "csv_sha256": "00",
      "extracted_at": "2025-01-01T00:00:00Z",
      "logical_name": "",
      "primary_keys": ["Region"],
      "row_count": 1,
      "schema_version": "veda-tags-2024",
      "sheet_name": "sheet",
      "table_id": "sheet__fi_t",
      "tag": "~FI_T",
      "tag_position": "A1",
      "tag_type": "fi_t",
      "workbook_id": "wb"
    }
  },
  "version": 1,
  "workbooks": {}
}
`
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	ix, err := Read(path)
	require.NoError(t, err)
	require.Contains(t, ix.Tables, "wb/sheet__fi_t")
	assert.Equal(t, "sheet__fi_t", ix.Tables["wb/sheet__fi_t"].TableID)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
