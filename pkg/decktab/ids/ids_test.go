package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkbookID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"VT_REG_PRI_V01.xlsx", "VT_REG_PRI_V01"},
		{"decks/SuppXLS/Scen_Policy.xlsx", "Scen_Policy"},
		{"no_extension", "no_extension"},
		{"dir/name.with.dots.xls", "name.with.dots"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorkbookID(tt.path), tt.path)
	}
}

func TestTableID(t *testing.T) {
	tests := []struct {
		sheet, tagType, logical string
		want                    string
	}{
		{"Processes", "fi_t", "BaseParameters", "processes__fi_t__baseparameters"},
		{"Processes", "fi_process", "", "processes__fi_process"},
		{"My Sheet (v2)", "fi_t", "Base-Params", "my_sheet__v2___fi_t__base_params"},
		{"  Padded  ", "fi_t", "", "padded__fi_t"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TableID(tt.sheet, tt.tagType, tt.logical))
	}
}

func TestTableIDIsPositionIndependent(t *testing.T) {
	// Only sheet, type, and logical name feed the id, so relocating a
	// table within a sheet cannot change it.
	a := TableID("Processes", "fi_t", "BaseParameters")
	b := TableID("Processes", "fi_t", "BaseParameters")
	assert.Equal(t, a, b)
}

func TestTableIDCollapsesTagTextVariants(t *testing.T) {
	// Distinct raw texts with the same parsed components share an id.
	assert.Equal(t,
		TableID("S", "fi_t", "base params"),
		TableID("S", "fi_t", "Base_Params"))
}
