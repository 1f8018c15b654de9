package csvio

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// WriteTable writes a table to path as canonical CSV and returns the SHA-256
// hex hash of the written bytes, plus any sort warnings.
//
// Encoding invariants: UTF-8 without BOM, LF-only line terminators on every
// platform, minimal quoting, empty field for null values, header row
// present, rows sorted by primary key. Repeated invocations on the same
// logical input produce byte-identical output. The file is written
// atomically (same-directory temp file, then rename).
func WriteTable(path string, columns []string, rows [][]*string, primaryKeys []string) (string, []string, error) {
	data, warnings, err := Encode(columns, rows, primaryKeys)
	if err != nil {
		return "", warnings, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", warnings, fmt.Errorf("creating table directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", warnings, fmt.Errorf("writing %s: %w", path, err)
	}

	return HashBytes(data), warnings, nil
}

// Encode renders the canonical CSV bytes without touching the filesystem.
// A table with zero columns encodes to zero bytes.
func Encode(columns []string, rows [][]*string, primaryKeys []string) ([]byte, []string, error) {
	if len(columns) == 0 {
		return nil, nil, nil
	}

	sorted, warnings := SortRows(columns, rows, primaryKeys)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// csv.Writer defaults to LF terminators; UseCRLF stays false.

	if err := w.Write(columns); err != nil {
		return nil, warnings, err
	}
	record := make([]string, len(columns))
	for _, row := range sorted {
		for i := range columns {
			if v := cellAt(row, i); v != nil {
				record[i] = *v
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return nil, warnings, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, warnings, err
	}

	return buf.Bytes(), warnings, nil
}

// HashBytes returns the SHA-256 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ReadTable loads a canonical CSV back into columns and nullable rows.
// Empty fields become nil, matching the normalized in-memory form.
func ReadTable(path string) ([]string, [][]*string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	columns := records[0]
	rows := make([][]*string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]*string, len(record))
		for i, field := range record {
			if field != "" {
				v := field
				row[i] = &v
			}
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}
