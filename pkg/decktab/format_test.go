package decktab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRestoresCanonicalForm(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))

	canonical, err := os.ReadFile(csvPath)
	require.NoError(t, err)

	// Hand-edit: rows out of order, CRLF line endings.
	scrambled := "Region,Process,Year,Value\r\n" +
		"AUS,GAS_PWR,2020,75.2\r\n" +
		"AUS,COAL_PWR,2020,100.5\r\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(scrambled), 0o644))

	require.NoError(t, Format(deckRoot, opts))

	formatted, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, string(canonical), string(formatted))

	// The index hash follows the rewritten bytes.
	index, err := LoadDeckIndex(deckRoot, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Index.Tables[key].CSVSHA256, index.Tables[key].CSVSHA256)
}

func TestFormatIdempotent(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))

	require.NoError(t, Format(deckRoot, opts))
	once, err := os.ReadFile(csvPath)
	require.NoError(t, err)

	require.NoError(t, Format(deckRoot, opts))
	twice, err := os.ReadFile(csvPath)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestFormatMissingCSVIsIncomplete(t *testing.T) {
	deckRoot := writeDeck(t)
	opts := DefaultOptions()
	first, err := Extract(deckRoot, opts)
	require.NoError(t, err)

	key := "VT_TEST_V01/processes__fi_t__baseparameters"
	csvPath := filepath.Join(deckRoot, "shadow", filepath.FromSlash(first.Index.Tables[key].CSVPath))
	require.NoError(t, os.Remove(csvPath))

	err = Format(deckRoot, opts)
	assert.ErrorIs(t, err, ErrFormatIncomplete)
}

func TestFormatRequiresIndex(t *testing.T) {
	err := Format(t.TempDir(), DefaultOptions())
	assert.ErrorIs(t, err, ErrIndexNotFound)
}
