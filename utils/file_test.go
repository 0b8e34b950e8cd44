package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFile(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, ValidFile(filepath.Join(dir, "missing")))

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.False(t, ValidFile(empty))

	full := filepath.Join(dir, "full")
	require.NoError(t, os.WriteFile(full, []byte("data"), 0o644))
	assert.True(t, ValidFile(full))

	assert.False(t, ValidFile(dir))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0o600))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// overwrite is atomic too
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0o600))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
