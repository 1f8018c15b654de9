package decktab

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dlg0/decktab/pkg/decktab/csvio"
	"github.com/dlg0/decktab/pkg/decktab/models"
	"github.com/dlg0/decktab/pkg/decktab/schema"
)

// reportTable is the detailed view of one modified table.
type reportTable struct {
	Key         string
	RowCountA   int
	RowCountB   int
	Columns     []string
	AddedRows   [][]string
	RemovedRows [][]string
	Truncated   bool
	UnifiedDiff string
}

type reportData struct {
	Diff     models.DiffResult
	Modified []reportTable
}

// Report writes a self-contained HTML diff report between two decks.
//
// Table-level changes come from the index diff; for modified tables the
// report aligns rows by identity and shows added/removed rows plus a unified
// diff of the canonical CSV bodies. Row identity normalizes recognized
// comment prefixes on primary-key cells, so annotating a row is not reported
// as a content change. That normalization applies only here, never to the
// persisted CSVs. Row output is capped at limitRows per table.
func Report(deckA, deckB, output string, limitRows int, opts Options) error {
	indexA, err := LoadDeckIndex(deckA, opts)
	if err != nil {
		return err
	}
	indexB, err := LoadDeckIndex(deckB, opts)
	if err != nil {
		return err
	}

	tagSchema, err := opts.loadSchema()
	if err != nil {
		return err
	}

	diff := Diff(indexA, indexB, deckA, deckB)

	outRootA := opts.outputRoot(resolvePath(deckA))
	outRootB := opts.outputRoot(resolvePath(deckB))

	data := reportData{Diff: diff}
	for _, modified := range diff.TablesModified {
		tableA := indexA.Tables[modified.TableID]
		tableB := indexB.Tables[modified.TableID]

		detail, err := compareTables(tagSchema, outRootA, outRootB, tableA, tableB, limitRows)
		if err != nil {
			opts.logger().Warn("detail comparison skipped", "table", modified.TableID, "error", err)
			detail = reportTable{Key: modified.TableID, RowCountA: tableA.RowCount, RowCountB: tableB.RowCount}
		}
		data.Modified = append(data.Modified, detail)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := atomic.WriteFile(output, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// compareTables aligns the rows of one table across two decks.
func compareTables(
	tagSchema *schema.Schema,
	outRootA, outRootB string,
	tableA, tableB models.TableMeta,
	limitRows int,
) (reportTable, error) {
	detail := reportTable{
		Key:       tableA.CompositeKey(),
		RowCountA: tableA.RowCount,
		RowCountB: tableB.RowCount,
	}

	columnsA, rowsA, err := csvio.ReadTable(filepath.Join(outRootA, filepath.FromSlash(tableA.CSVPath)))
	if err != nil {
		return detail, err
	}
	columnsB, rowsB, err := csvio.ReadTable(filepath.Join(outRootB, filepath.FromSlash(tableB.CSVPath)))
	if err != nil {
		return detail, err
	}
	detail.Columns = columnsB
	if len(detail.Columns) == 0 {
		detail.Columns = columnsA
	}

	keysA := rowIdentities(tagSchema, tableA, columnsA, rowsA)
	keysB := rowIdentities(tagSchema, tableB, columnsB, rowsB)

	countsA := make(map[string]int, len(keysA))
	for _, k := range keysA {
		countsA[k]++
	}

	remaining := countsA
	for i, k := range keysB {
		if remaining[k] > 0 {
			remaining[k]--
			continue
		}
		if len(detail.AddedRows) >= limitRows {
			detail.Truncated = true
			break
		}
		detail.AddedRows = append(detail.AddedRows, renderRow(rowsB[i]))
	}

	countsB := make(map[string]int, len(keysB))
	for _, k := range keysB {
		countsB[k]++
	}
	for i, k := range keysA {
		if countsB[k] > 0 {
			countsB[k]--
			continue
		}
		if len(detail.RemovedRows) >= limitRows {
			detail.Truncated = true
			break
		}
		detail.RemovedRows = append(detail.RemovedRows, renderRow(rowsA[i]))
	}

	detail.UnifiedDiff = unifiedCSVDiff(
		filepath.Join(outRootA, filepath.FromSlash(tableA.CSVPath)),
		filepath.Join(outRootB, filepath.FromSlash(tableB.CSVPath)),
		tableA.CompositeKey(),
	)

	return detail, nil
}

// rowIdentities computes one identity string per row. Primary-key cells are
// normalized by stripping recognized comment prefixes before comparison.
func rowIdentities(tagSchema *schema.Schema, table models.TableMeta, columns []string, rows [][]*string) []string {
	pkCols := make(map[int][]string) // column index -> ignore symbols
	for _, pk := range table.PrimaryKeys {
		if idx := indexOf(columns, pk); idx >= 0 {
			pkCols[idx] = tagSchema.RowIgnoreSymbols(table.TagType, pk)
		}
	}

	identities := make([]string, len(rows))
	parts := make([]string, len(columns))
	for i, row := range rows {
		for j := range columns {
			value := ""
			if j < len(row) && row[j] != nil {
				value = *row[j]
			}
			if symbols, ok := pkCols[j]; ok {
				value = stripIgnorePrefix(value, symbols)
			}
			parts[j] = value
		}
		identities[i] = strings.Join(parts, "\x1f")
	}
	return identities
}

// stripIgnorePrefix removes a recognized comment prefix and the whitespace
// following it from a primary-key cell value.
func stripIgnorePrefix(value string, symbols []string) string {
	for _, symbol := range symbols {
		if symbol == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(value, symbol); ok {
			return strings.TrimLeft(rest, " \t")
		}
	}
	return value
}

func renderRow(row []*string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func unifiedCSVDiff(pathA, pathB, key string) string {
	a, errA := os.ReadFile(pathA)
	b, errB := os.ReadFile(pathB)
	if errA != nil || errB != nil {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "a/" + key,
		ToFile:   "b/" + key,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Deck diff report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1f2328; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; border-bottom: 1px solid #d0d7de; padding-bottom: .3rem; }
table.summary td, table.summary th { padding: .2rem .8rem; text-align: left; }
table.rows { border-collapse: collapse; margin: .5rem 0 1rem; font-size: .85rem; }
table.rows th, table.rows td { border: 1px solid #d0d7de; padding: .15rem .5rem; }
tr.added { background: #dafbe1; }
tr.removed { background: #ffebe9; }
ul.keys { font-family: monospace; font-size: .9rem; }
pre.diff { background: #f6f8fa; border: 1px solid #d0d7de; padding: .6rem; overflow-x: auto; font-size: .8rem; }
.truncated { color: #9a6700; font-style: italic; }
.meta { color: #59636e; font-size: .85rem; }
</style>
</head>
<body>
<h1>Deck diff report</h1>
<p class="meta">A: {{.Diff.DeckA}}<br>B: {{.Diff.DeckB}}<br>Compared at {{.Diff.ComparedAt}}</p>

<h2>Summary</h2>
<table class="summary">
<tr><th>Tables in A</th><td>{{.Diff.Summary.TotalTablesA}}</td></tr>
<tr><th>Tables in B</th><td>{{.Diff.Summary.TotalTablesB}}</td></tr>
<tr><th>Added</th><td>{{.Diff.Summary.Added}}</td></tr>
<tr><th>Removed</th><td>{{.Diff.Summary.Removed}}</td></tr>
<tr><th>Modified</th><td>{{.Diff.Summary.Modified}}</td></tr>
<tr><th>Unchanged</th><td>{{.Diff.Summary.Unchanged}}</td></tr>
</table>

{{if .Diff.TablesAdded}}
<h2>Added tables</h2>
<ul class="keys">{{range .Diff.TablesAdded}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Diff.TablesRemoved}}
<h2>Removed tables</h2>
<ul class="keys">{{range .Diff.TablesRemoved}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{range .Modified}}
<h2>Modified: {{.Key}}</h2>
<p class="meta">Rows: {{.RowCountA}} &rarr; {{.RowCountB}}</p>
{{if or .AddedRows .RemovedRows}}
<table class="rows">
<tr><th></th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{$cols := .Columns}}
{{range .RemovedRows}}<tr class="removed"><td>&minus;</td>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
{{range .AddedRows}}<tr class="added"><td>+</td>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
</table>
{{if .Truncated}}<p class="truncated">Row output truncated.</p>{{end}}
{{end}}
{{if .UnifiedDiff}}<pre class="diff">{{.UnifiedDiff}}</pre>{{end}}
{{end}}

{{if not .Diff.HasChanges}}<h2>No changes</h2>{{end}}
</body>
</html>
`))
