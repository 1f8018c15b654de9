package decktab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlg0/decktab/pkg/decktab/indexstore"
)

func TestValidateFreshExtraction(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	_, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	result, err := Validate(deckRoot, opts)
	require.NoError(t, err)
	assert.True(t, result.OK(), "fresh extraction must validate clean: %v", result.Errors)
	assert.Equal(t, 1, result.TablesChecked)
}

func TestValidateMissingCSV(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))
	require.NoError(t, os.Remove(csvPath))

	result, err := Validate(deckRoot, opts)
	require.NoError(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "CSV file not found")
}

func TestValidateNullAndDuplicateKeys(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))
	corrupted := "Region,Process,Year,Value\n" +
		"AUS,COAL_PWR,2020,100.5\n" +
		"AUS,COAL_PWR,2020,99.0\n" +
		",GAS_PWR,2020,75.2\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(corrupted), 0o644))

	result, err := Validate(deckRoot, opts)
	require.NoError(t, err)
	assert.False(t, result.OK())

	var sawNull, sawDup bool
	for _, e := range result.Errors {
		if containsAll(e, "NULL values", "Region", "4") {
			sawNull = true
		}
		if containsAll(e, "duplicate primary keys", "2, 3") {
			sawDup = true
		}
	}
	assert.True(t, sawNull, "expected NULL key error, got %v", result.Errors)
	assert.True(t, sawDup, "expected duplicate key error, got %v", result.Errors)
}

func TestValidateColumnMismatchAndMissingRequired(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	// Drop the required Region column from the CSV.
	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))
	truncated := "Process,Year,Value\nCOAL_PWR,2020,100.5\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(truncated), 0o644))

	result, err := Validate(deckRoot, opts)
	require.NoError(t, err)
	assert.False(t, result.OK())

	var sawMismatch, sawRequired bool
	for _, e := range result.Errors {
		if containsAll(e, "column mismatch") {
			sawMismatch = true
		}
		if containsAll(e, "required column", "Region") {
			sawRequired = true
		}
	}
	assert.True(t, sawMismatch, "expected column mismatch error, got %v", result.Errors)
	assert.True(t, sawRequired, "expected missing required column error, got %v", result.Errors)
}

func TestValidateUnknownTagIsWarning(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	_, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	index, err := LoadDeckIndex(deckRoot, opts)
	require.NoError(t, err)
	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	table := index.Tables[key]
	table.TagType = "mystery_tag"
	table.PrimaryKeys = []string{"Region"}
	index.Tables[key] = table
	root, err := resolveDeckRoot(deckRoot)
	require.NoError(t, err)
	require.NoError(t, indexstore.Write(index, IndexPath(opts.outputRoot(root))))

	result, err := Validate(deckRoot, opts)
	require.NoError(t, err)
	assert.True(t, result.OK(), "unknown tag is advisory only: %v", result.Errors)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "unknown tag type")
}

func TestValidateRequiresIndex(t *testing.T) {
	_, err := Validate(t.TempDir(), DefaultOptions())
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
