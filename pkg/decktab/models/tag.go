// Package models defines data structures for tagged-table extraction.
package models

import "fmt"

// Tag represents a located sentinel marker cell (a cell whose text starts
// with "~"). It is produced by the scanner and consumed within one pass.
type Tag struct {
	// Sheet is the sheet name containing the tag.
	Sheet string
	// Row is the tag row (1-based).
	Row int
	// Col is the tag column (1-based).
	Col int
	// Text is the full trimmed tag text including the sentinel.
	Text string
	// Type is the lowercased tag type (text before a colon, sentinel stripped).
	Type string
	// LogicalName is the trimmed text after the colon, empty if absent.
	LogicalName string
}

// Position returns the A1-style cell reference of the tag (e.g., "B5").
func (t Tag) Position() string {
	return fmt.Sprintf("%s%d", ColumnLetter(t.Col), t.Row)
}

// ColumnLetter converts a 1-based column number to its Excel letter form
// (1 -> A, 27 -> AA).
func ColumnLetter(col int) string {
	var buf []byte
	col--
	for col >= 0 {
		buf = append([]byte{byte('A' + col%26)}, buf...)
		col = col/26 - 1
	}
	return string(buf)
}

// TableBoundary is the column span of a table's header row.
// A nil *TableBoundary means no header was found (an empty table).
type TableBoundary struct {
	// StartCol is the leftmost header column (1-based, inclusive).
	StartCol int
	// EndCol is the rightmost header column (1-based, inclusive).
	EndCol int
}

// Width returns the number of columns covered by the span.
func (b TableBoundary) Width() int {
	return b.EndCol - b.StartCol + 1
}
