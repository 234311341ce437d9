package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_SingleFileTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dart")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	files, err := discoverFiles(path, []string{".dart"})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestDiscoverFiles_WalksDirectoryFilteringByExtension(t *testing.T) {
	dir := t.TempDir()
	wanted := filepath.Join(dir, "a.dart")
	other := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(wanted, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	files, err := discoverFiles(dir, []string{".dart"})
	require.NoError(t, err)
	assert.Equal(t, []string{wanted}, files)
}

func TestDiscoverFiles_EmptyExtensionSetMatchesEverything(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dart")
	b := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x"), 0o644))

	files, err := discoverFiles(dir, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)
}

func TestDiscoverFiles_MissingPathReturnsError(t *testing.T) {
	_, err := discoverFiles(filepath.Join(t.TempDir(), "missing"), []string{".dart"})
	assert.Error(t, err)
}
