// Package ids derives stable workbook and table identifiers.
//
// Identifiers are deliberately position-independent: moving a tagged table
// to a different row or column must not change its id, so diffs survive
// table relocation within a sheet.
package ids

import (
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9_]`)
var whitespace = regexp.MustCompile(`\s+`)

// WorkbookID derives a workbook identifier from its file path stem. The id
// depends only on the path, never on content, so re-running extraction on
// the same path yields the same id even when the file changed; content
// changes are tracked via the separate hash field.
func WorkbookID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TableID composes a stable table identifier from the sheet name, tag type,
// and optional logical name. Each component is normalized independently.
// Tag position is never an input.
//
// Two distinct tag texts sharing the same type, sheet, and logical name
// collapse to the same id. That collision is preserved deliberately for
// index compatibility and isolated here so it can be revisited in one place.
func TableID(sheetName, tagType, logicalName string) string {
	parts := []string{normalizeComponent(sheetName), normalizeComponent(tagType)}
	if logicalName != "" {
		parts = append(parts, normalizeComponent(logicalName))
	}
	return strings.Join(parts, "__")
}

// normalizeComponent lowercases, collapses internal whitespace to single
// underscores, and replaces non-alphanumerics with underscores.
func normalizeComponent(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespace.ReplaceAllString(name, "_")
	return nonAlnum.ReplaceAllString(name, "_")
}
