package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a/c.hcl", "a/notes.txt", ".git/x.hcl"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a", "c.hcl"), filepath.Join(root, "b.hcl")}, files)

	_, err = FindFilesByExtension(root, "")
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs", "lp")

	path, err := WriteFile(dir, "master.mps", "NAME master\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "master.mps"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "NAME master\n", string(b))
}
