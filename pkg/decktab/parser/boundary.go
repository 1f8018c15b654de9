package parser

import (
	"strings"

	"github.com/dlg0/decktab/pkg/decktab/grid"
	"github.com/dlg0/decktab/pkg/decktab/models"
)

// headerLookahead bounds the rightward scan for an anchor when the cell
// directly below the tag is empty. Tags further than this from their header
// are treated as header-less single-value tags.
const headerLookahead = 10

// DetectBoundary determines the header column span for a tag.
//
// The header row is always one row below the tag. The anchor is the cell
// directly below the tag when non-empty; otherwise the first non-empty
// header cell within the lookahead window to the right. From the anchor the
// span expands left and right over contiguous non-empty header cells.
//
// otherTagCols holds the columns of other tags on the same tag row; the span
// never includes or crosses such a column. When several tags share the row
// the nearest tag wins: expansion in either direction stops before the first
// other-tag column encountered. A nil return means no header was found (an
// empty table, the expected shape for single-value tags).
func DetectBoundary(g grid.Grid, tagRow, tagCol int, otherTagCols map[int]bool) *models.TableBoundary {
	headerRow := tagRow + 1

	anchor := 0
	if headerCell(g, headerRow, tagCol) != "" {
		anchor = tagCol
	} else {
		for col := tagCol + 1; col <= tagCol+headerLookahead && col <= g.MaxCol(); col++ {
			if otherTagCols[col] {
				break
			}
			if headerCell(g, headerRow, col) != "" {
				anchor = col
				break
			}
		}
	}
	if anchor == 0 {
		return nil
	}

	startCol := anchor
	for startCol > 1 && !otherTagCols[startCol-1] && headerCell(g, headerRow, startCol-1) != "" {
		startCol--
	}

	endCol := anchor
	for endCol < g.MaxCol() && !otherTagCols[endCol+1] && headerCell(g, headerRow, endCol+1) != "" {
		endCol++
	}

	return &models.TableBoundary{StartCol: startCol, EndCol: endCol}
}

// DataRowExtent returns the 1-based row index of the last data row for a
// boundary, or tagRow+1 when the table has no data rows. Data rows start two
// rows below the tag; the first row whose cells are all empty across the
// span terminates the table.
func DataRowExtent(g grid.Grid, tagRow int, boundary models.TableBoundary) int {
	lastRow := tagRow + 1
	for row := tagRow + 2; row <= g.MaxRow(); row++ {
		if rowEmpty(g, row, boundary) {
			break
		}
		lastRow = row
	}
	return lastRow
}

func rowEmpty(g grid.Grid, row int, boundary models.TableBoundary) bool {
	for col := boundary.StartCol; col <= boundary.EndCol; col++ {
		if strings.TrimSpace(g.Value(row, col)) != "" {
			return false
		}
	}
	return true
}

func headerCell(g grid.Grid, row, col int) string {
	return strings.TrimSpace(g.Value(row, col))
}
