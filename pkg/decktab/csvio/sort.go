// Package csvio writes extracted tables as canonical CSV: deterministic row
// order, fixed column order, byte-stable encoding, and a content hash.
package csvio

import (
	"fmt"
	"sort"
	"strings"
)

// SortRows returns the rows sorted by the primary-key tuple. The input is
// not modified.
//
// Ordering: per key position, values compare case-sensitively byte-wise;
// a nil (null) component sorts after every non-nil value at that position;
// the sort is stable, so rows with equal keys keep their original relative
// order. When any declared primary-key column is absent from the columns,
// all available columns become the key and a warning is recorded; a missing
// key column is never a hard failure.
func SortRows(columns []string, rows [][]*string, primaryKeys []string) ([][]*string, []string) {
	sorted := make([][]*string, len(rows))
	copy(sorted, rows)

	if len(rows) == 0 || len(primaryKeys) == 0 {
		return sorted, nil
	}

	colIndex := make(map[string]int, len(columns))
	for i, col := range columns {
		colIndex[col] = i
	}

	var warnings []string
	keyCols := make([]int, 0, len(primaryKeys))
	var missing []string
	for _, pk := range primaryKeys {
		if idx, ok := colIndex[pk]; ok {
			keyCols = append(keyCols, idx)
		} else {
			missing = append(missing, pk)
		}
	}
	if len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"primary key columns %s not present; sorting by all columns", strings.Join(missing, ", ")))
		keyCols = keyCols[:0]
		for i := range columns {
			keyCols = append(keyCols, i)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return compareKey(sorted[i], sorted[j], keyCols) < 0
	})

	return sorted, warnings
}

// compareKey compares two rows on the key columns, nulls last per position.
func compareKey(a, b []*string, keyCols []int) int {
	for _, col := range keyCols {
		av := cellAt(a, col)
		bv := cellAt(b, col)
		switch {
		case av == nil && bv == nil:
			continue
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		if c := strings.Compare(*av, *bv); c != 0 {
			return c
		}
	}
	return 0
}

func cellAt(row []*string, col int) *string {
	if col >= len(row) {
		return nil
	}
	return row[col]
}
