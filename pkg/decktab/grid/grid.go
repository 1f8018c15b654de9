// Package grid provides read-only cell access to spreadsheet sheets.
//
// The scanner and boundary detector operate purely on the Grid interface,
// so they can be tested against an in-memory grid without any spreadsheet
// library.
package grid

// Grid is a read-only view of one sheet's cells.
type Grid interface {
	// Value returns the raw string value at (row, col), both 1-based.
	// An empty string means an empty cell. Out-of-bounds reads return "".
	Value(row, col int) string
	// MaxRow returns the highest row containing data (0 for an empty sheet).
	MaxRow() int
	// MaxCol returns the highest column containing data (0 for an empty sheet).
	MaxCol() int
}

// MapGrid is an in-memory Grid backed by a (row,col) -> value map.
type MapGrid struct {
	cells  map[[2]int]string
	maxRow int
	maxCol int
}

// NewMapGrid returns an empty MapGrid.
func NewMapGrid() *MapGrid {
	return &MapGrid{cells: make(map[[2]int]string)}
}

// Set stores a cell value at (row, col), 1-based. Setting "" is a no-op.
func (g *MapGrid) Set(row, col int, value string) {
	if value == "" {
		return
	}
	g.cells[[2]int{row, col}] = value
	if row > g.maxRow {
		g.maxRow = row
	}
	if col > g.maxCol {
		g.maxCol = col
	}
}

// Value implements Grid.
func (g *MapGrid) Value(row, col int) string {
	return g.cells[[2]int{row, col}]
}

// MaxRow implements Grid.
func (g *MapGrid) MaxRow() int { return g.maxRow }

// MaxCol implements Grid.
func (g *MapGrid) MaxCol() int { return g.maxCol }
