package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	dir, err := Acquire()
	require.NoError(t, err)
	require.DirExists(t, dir.Path())

	inner := dir.Join("original")
	assert.Equal(t, filepath.Join(dir.Path(), "original"), inner)
	require.NoError(t, os.WriteFile(inner, []byte("data"), 0o644))

	path := dir.Path()
	dir.Release()
	assert.NoDirExists(t, path)
}

func TestAcquireIsCollisionResistant(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	a, err := Acquire()
	require.NoError(t, err)
	defer a.Release()
	b, err := Acquire()
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestReleaseToleratesMissingDirectory(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	dir, err := Acquire()
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir.Path()))

	dir.Release() // must not panic or error
	dir.Release() // double release is a no-op
}
