package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestSaveAndRemove(t *testing.T) {
	store := newStore(t)

	name, err := store.Save("scan.png", strings.NewReader("content"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_scan.png"))
	assert.True(t, store.Exists(name))

	data, err := os.ReadFile(filepath.Join(store.Root(), name))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.Remove(name))
	assert.False(t, store.Exists(name))
	require.ErrorIs(t, store.Remove(name), ErrFileNotFound)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	store := newStore(t)

	_, err := store.Save("", strings.NewReader("content"))
	require.ErrorIs(t, err, ErrMissingFileName)
}

func TestSaveUniqueNames(t *testing.T) {
	store := newStore(t)

	first, err := store.Save("scan.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save("scan.png", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, store.Exists(first))
	assert.True(t, store.Exists(second))
}

func TestSaveStripsPath(t *testing.T) {
	store := newStore(t)

	name, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, name, "/")
	assert.True(t, store.Exists(name))
}

func TestURL(t *testing.T) {
	store := newStore(t)
	assert.Equal(t, "/media/medical_reports/abc.png", store.URL("abc.png"))
}

func TestSweep(t *testing.T) {
	store := newStore(t)

	kept, err := store.Save("kept.pdf", strings.NewReader("kept"))
	require.NoError(t, err)
	orphan, err := store.Save("orphan.pdf", strings.NewReader("orphan"))
	require.NoError(t, err)

	removed, err := store.Sweep(map[string]bool{kept: true})
	require.NoError(t, err)

	assert.Equal(t, []string{orphan}, removed)
	assert.True(t, store.Exists(kept))
	assert.False(t, store.Exists(orphan))
}
