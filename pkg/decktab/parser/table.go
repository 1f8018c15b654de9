package parser

import (
	"fmt"
	"strings"

	"github.com/dlg0/decktab/pkg/decktab/grid"
	"github.com/dlg0/decktab/pkg/decktab/models"
	"github.com/dlg0/decktab/pkg/decktab/schema"
)

// ParseTable reads the table owned by a tag into an ExtractedTable.
//
// otherTagCols are the columns of other tags on the same tag row. Headers
// are deduplicated positionally and resolved to canonical names through the
// schema; data values are normalized (trimmed, nil for empty). A tag with no
// detectable header yields an empty table.
func ParseTable(g grid.Grid, tag models.Tag, s *schema.Schema, otherTagCols map[int]bool) *models.ExtractedTable {
	table := &models.ExtractedTable{Columns: []string{}}

	boundary := DetectBoundary(g, tag.Row, tag.Col, otherTagCols)
	if boundary == nil {
		return table
	}

	headerRow := tag.Row + 1
	headers := make([]string, 0, boundary.Width())
	for col := boundary.StartCol; col <= boundary.EndCol; col++ {
		headers = append(headers, strings.TrimSpace(g.Value(headerRow, col)))
	}

	headers, dupWarnings := dedupeHeaders(headers)
	table.Warnings = append(table.Warnings, dupWarnings...)

	columns := make([]string, 0, len(headers))
	var unknown []string
	for _, header := range headers {
		if canonical, ok := s.CanonicalName(tag.Type, header); ok {
			columns = append(columns, canonical)
		} else {
			columns = append(columns, header)
			unknown = append(unknown, header)
		}
	}
	if len(unknown) > 0 {
		table.Warnings = append(table.Warnings,
			fmt.Sprintf("columns unknown to schema for tag %q: %s", tag.Type, strings.Join(unknown, ", ")))
	}
	table.Columns = columns

	lastRow := DataRowExtent(g, tag.Row, *boundary)
	for row := tag.Row + 2; row <= lastRow; row++ {
		values := make([]*string, 0, boundary.Width())
		for col := boundary.StartCol; col <= boundary.EndCol; col++ {
			values = append(values, Normalize(g.Value(row, col)))
		}
		table.Rows = append(table.Rows, values)
	}

	return table
}

// dedupeHeaders renames every occurrence of a duplicated header name to
// "<name>_col<offset>" with the zero-based offset within the span, so data
// is never dropped to a name collision. Non-duplicated names pass through.
func dedupeHeaders(headers []string) ([]string, []string) {
	counts := make(map[string]int, len(headers))
	for _, h := range headers {
		counts[h]++
	}

	var dups []string
	for h, n := range counts {
		if n > 1 {
			dups = append(dups, h)
		}
	}
	if len(dups) == 0 {
		return headers, nil
	}

	renamed := make([]string, len(headers))
	for i, h := range headers {
		if counts[h] > 1 {
			renamed[i] = fmt.Sprintf("%s_col%d", h, i)
		} else {
			renamed[i] = h
		}
	}

	warning := fmt.Sprintf("duplicate headers renamed by column offset: %s", strings.Join(dups, ", "))
	return renamed, []string{warning}
}
