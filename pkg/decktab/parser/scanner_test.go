package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlg0/decktab/pkg/decktab/grid"
)

func TestScanTagsRowMajorOrder(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(5, 2, "~FI_T: Later")
	g.Set(2, 7, "~FI_COMM")
	g.Set(2, 3, "~FI_PROCESS")
	g.Set(3, 1, "not a tag")

	tags := ScanTags(g, "Sheet1")
	require.Len(t, tags, 3)

	assert.Equal(t, "fi_process", tags[0].Type)
	assert.Equal(t, 2, tags[0].Row)
	assert.Equal(t, 3, tags[0].Col)

	assert.Equal(t, "fi_comm", tags[1].Type)
	assert.Equal(t, 7, tags[1].Col)

	assert.Equal(t, "fi_t", tags[2].Type)
	assert.Equal(t, "Later", tags[2].LogicalName)
	assert.Equal(t, "Sheet1", tags[2].Sheet)
}

func TestScanTagsTrimsBeforeMatching(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(1, 1, "  ~FI_T: Padded  ")

	tags := ScanTags(g, "S")
	require.Len(t, tags, 1)
	assert.Equal(t, "~FI_T: Padded", tags[0].Text)
}

func TestScanTagsSkipsSetDeclarations(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(1, 1, "~UC_SETS: R_E")
	g.Set(1, 4, "~FI_T")

	tags := ScanTags(g, "S")
	require.Len(t, tags, 1)
	assert.Equal(t, "fi_t", tags[0].Type)
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		text        string
		tagType     string
		logicalName string
	}{
		{"~FI_T: BaseParameters", "fi_t", "BaseParameters"},
		{"~FI_T:BaseParameters", "fi_t", "BaseParameters"},
		{"~FI_PROCESS", "fi_process", ""},
		{"~fi_t :  spaced name ", "fi_t", "spaced name"},
		{"~TFM_INS: A: B", "tfm_ins", "A: B"},
	}
	for _, tt := range tests {
		tagType, logicalName := ParseTag(tt.text)
		assert.Equal(t, tt.tagType, tagType, tt.text)
		assert.Equal(t, tt.logicalName, logicalName, tt.text)
	}
}

func TestTagColumnsByRow(t *testing.T) {
	g := grid.NewMapGrid()
	g.Set(2, 2, "~FI_T: A")
	g.Set(2, 8, "~FI_T: B")
	g.Set(9, 1, "~FI_PROCESS")

	byRow := TagColumnsByRow(ScanTags(g, "S"))
	assert.Equal(t, map[int]bool{2: true, 8: true}, byRow[2])
	assert.Equal(t, map[int]bool{1: true}, byRow[9])
}
