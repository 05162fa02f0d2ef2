package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicCreatesDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "charts", "2023", "chart.txt")

	require.NoError(t, WriteAtomic(path, []byte("profit"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "profit", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteAtomicOverwriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "raketracker.hcl")

	require.NoError(t, WriteAtomic(path, []byte("initial"), 0o644))
	require.NoError(t, WriteAtomic(path, []byte("updated"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "raketracker.hcl", entries[0].Name())
}

func TestWriteAtomicParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "charts")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteAtomic(filepath.Join(blocker, "chart.txt"), []byte("data"), 0o644)
	assert.Error(t, err)
}
