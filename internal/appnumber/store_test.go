package appnumber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state", "application_number.txt"))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(" 61234567 "))
	number, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "61234567", number)

	require.NoError(t, store.Save("61234999"))
	number, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "61234999", number)
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "number.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsEmptyNumber(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "number.txt"))
	assert.Error(t, store.Save("   "))
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "number.txt"))
	require.NoError(t, store.Save("70000001"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "number.txt", entries[0].Name())
}
