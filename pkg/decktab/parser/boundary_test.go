package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlg0/decktab/pkg/decktab/grid"
	"github.com/dlg0/decktab/pkg/decktab/models"
)

func noOtherTags() map[int]bool { return map[int]bool{} }

func TestDetectBoundaryAnchorBelowTag(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T")
	g.Set(3, 2, "Region")
	g.Set(3, 3, "Process")
	g.Set(3, 4, "Value")

	b := DetectBoundary(g, 2, 2, noOtherTags())
	require.NotNil(t, b)
	assert.Equal(t, 2, b.StartCol)
	assert.Equal(t, 4, b.EndCol)
}

func TestDetectBoundaryScansRightForAnchor(t *testing.T) {
	// Tag floats left of the actual header block.
	g := grid.NewMapGrid()
	g.Set(2, 1, "~FI_T")
	g.Set(3, 4, "Region")
	g.Set(3, 5, "Value")

	b := DetectBoundary(g, 2, 1, noOtherTags())
	require.NotNil(t, b)
	assert.Equal(t, 4, b.StartCol)
	assert.Equal(t, 5, b.EndCol)
}

func TestDetectBoundaryNoHeaderMeansEmptyTable(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T")
	g.Set(3, 20, "FarAway") // beyond the lookahead window

	assert.Nil(t, DetectBoundary(g, 2, 2, noOtherTags()))
}

func TestDetectBoundaryExpandsLeftOverCommentColumn(t *testing.T) {
	// A comment column without a tag of its own is swept into the table
	// owned by the nearest tag to its right.
	g := grid.NewMapGrid()
	g.Set(2, 3, "~FI_T")
	g.Set(3, 2, "Comment")
	g.Set(3, 3, "Region")
	g.Set(3, 4, "Value")

	b := DetectBoundary(g, 2, 3, noOtherTags())
	require.NotNil(t, b)
	assert.Equal(t, 2, b.StartCol)
	assert.Equal(t, 4, b.EndCol)
}

func TestDetectBoundaryClipsAtAdjacentTag(t *testing.T) {
	// Two tables side by side on one tag row with no blank separator.
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T: Left")
	g.Set(2, 5, "~FI_T: Right")
	g.Set(3, 2, "A")
	g.Set(3, 3, "B")
	g.Set(3, 4, "C")
	g.Set(3, 5, "D")
	g.Set(3, 6, "E")

	left := DetectBoundary(g, 2, 2, map[int]bool{5: true})
	require.NotNil(t, left)
	assert.Equal(t, 2, left.StartCol)
	assert.Equal(t, 4, left.EndCol, "left table must not cross the right tag's column")

	right := DetectBoundary(g, 2, 5, map[int]bool{2: true})
	require.NotNil(t, right)
	assert.Equal(t, 5, right.StartCol, "right table must not expand into the left table")
	assert.Equal(t, 6, right.EndCol)
}

func TestDetectBoundaryNearestTagWinsOnTripleAdjacency(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T: A")
	g.Set(2, 4, "~FI_T: B")
	g.Set(2, 7, "~FI_T: C")
	for col := 2; col <= 8; col++ {
		g.Set(3, col, "H")
	}

	middle := DetectBoundary(g, 2, 4, map[int]bool{2: true, 7: true})
	require.NotNil(t, middle)
	assert.Equal(t, 3, middle.StartCol)
	assert.Equal(t, 6, middle.EndCol)
}

func TestDetectBoundaryAnchorScanStopsAtAdjacentTag(t *testing.T) {
	// The tag has no header of its own; the rightward anchor scan must not
	// steal the neighboring table's header.
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T: A")
	g.Set(2, 4, "~FI_T: B")
	g.Set(3, 4, "Region")
	g.Set(3, 5, "Value")

	assert.Nil(t, DetectBoundary(g, 2, 2, map[int]bool{4: true}))
}

func TestDataRowExtentStopsAtFirstEmptyRow(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T")
	g.Set(3, 2, "Region")
	g.Set(3, 3, "Value")
	g.Set(4, 2, "AUS")
	g.Set(5, 3, "10") // partially filled rows still count
	// row 6 fully empty
	g.Set(7, 2, "ORPHAN")

	b := models.TableBoundary{StartCol: 2, EndCol: 3}
	assert.Equal(t, 5, DataRowExtent(g, 2, b))
}

func TestDataRowExtentEmptyTable(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T")
	g.Set(3, 2, "Region")

	b := models.TableBoundary{StartCol: 2, EndCol: 2}
	assert.Equal(t, 3, DataRowExtent(g, 2, b), "no data rows: extent stays at the header row")
}
