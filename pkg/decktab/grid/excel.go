package grid

import (
	"github.com/xuri/excelize/v2"
)

// Workbook wraps an open excelize file and hands out per-sheet grids.
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook opens an Excel workbook for reading.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &Workbook{f: f}, nil
}

// SheetNames returns the workbook's sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Sheet materializes one sheet as a Grid. Raw cell values are used so that
// numeric cells round-trip without display formatting artifacts (an
// integer-valued cell never gains a trailing ".0").
func (w *Workbook) Sheet(name string) (Grid, error) {
	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return newSheetGrid(rows), nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// sheetGrid is a Grid over the row-major cell matrix excelize returns.
type sheetGrid struct {
	rows   [][]string
	maxCol int
}

func newSheetGrid(rows [][]string) *sheetGrid {
	g := &sheetGrid{rows: rows}
	for _, row := range rows {
		if len(row) > g.maxCol {
			g.maxCol = len(row)
		}
	}
	return g
}

func (g *sheetGrid) Value(row, col int) string {
	if row < 1 || row > len(g.rows) {
		return ""
	}
	cells := g.rows[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

func (g *sheetGrid) MaxRow() int { return len(g.rows) }

func (g *sheetGrid) MaxCol() int { return g.maxCol }
