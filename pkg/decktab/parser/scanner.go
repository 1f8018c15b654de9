// Package parser finds tagged tables on sheet grids and reads them into
// tabular form: tag scanning, header boundary detection, row extraction,
// and value normalization.
package parser

import (
	"strings"

	"github.com/dlg0/decktab/pkg/decktab/grid"
	"github.com/dlg0/decktab/pkg/decktab/models"
)

// TagSentinel marks a tag cell.
const TagSentinel = "~"

// setDeclarationTags are metadata-only tag types that carry no tabular data.
// They are filtered at scan stage and never produce a table, not even an
// empty one.
var setDeclarationTags = map[string]bool{
	"uc_sets": true,
}

// ScanTags finds every tag cell on a sheet in row-major order (top-to-bottom,
// left-to-right). The ordering is relied upon downstream to group tags by row
// for boundary disambiguation. Set-declaration tags are filtered out here.
func ScanTags(g grid.Grid, sheetName string) []models.Tag {
	var tags []models.Tag
	for row := 1; row <= g.MaxRow(); row++ {
		for col := 1; col <= g.MaxCol(); col++ {
			text := strings.TrimSpace(g.Value(row, col))
			if !strings.HasPrefix(text, TagSentinel) {
				continue
			}
			tagType, logicalName := ParseTag(text)
			if setDeclarationTags[tagType] {
				continue
			}
			tags = append(tags, models.Tag{
				Sheet:       sheetName,
				Row:         row,
				Col:         col,
				Text:        text,
				Type:        tagType,
				LogicalName: logicalName,
			})
		}
	}
	return tags
}

// ParseTag splits a tag's text into its lowercased type and optional logical
// name: "~FI_T: BaseParameters" -> ("fi_t", "BaseParameters").
func ParseTag(text string) (tagType, logicalName string) {
	stripped := strings.TrimSpace(strings.TrimLeft(text, TagSentinel))
	if before, after, found := strings.Cut(stripped, ":"); found {
		return strings.ToLower(strings.TrimSpace(before)), strings.TrimSpace(after)
	}
	return strings.ToLower(stripped), ""
}

// TagColumnsByRow groups tag columns by tag row, for adjacent-tag boundary
// clipping.
func TagColumnsByRow(tags []models.Tag) map[int]map[int]bool {
	byRow := make(map[int]map[int]bool)
	for _, tag := range tags {
		if byRow[tag.Row] == nil {
			byRow[tag.Row] = make(map[int]bool)
		}
		byRow[tag.Row][tag.Col] = true
	}
	return byRow
}
