package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Local {
	t.Helper()
	sq, err := OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Local{
		"memory": NewMemory(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "profile.json")),
		"sqlite": sq,
	}
}

func TestLocalRoundTrip(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := l.Get("missing")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, l.Set("k", "v1"))
			require.NoError(t, l.Set("k", "v2"))
			v, err := l.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v2", v)

			require.NoError(t, l.Remove("k"))
			require.NoError(t, l.Remove("k"))
			_, ok := Lookup(l, "k")
			assert.False(t, ok)
		})
	}
}

func TestFileStoreCorruptFileIsReplacedOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	fs := NewFileStore(path)
	_, err := fs.Get("a")
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "get", se.Op)

	require.NoError(t, fs.Set("a", "1"))
	v, err := fs.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestSQLiteKeysByPrefix(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "p", "profile.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("learning-notes-A", "[]"))
	require.NoError(t, s.Set("learning-notes-A-active", "1"))
	require.NoError(t, s.Set("mfin_ai_config", "{}"))

	keys, err := s.Keys("learning-notes-")
	require.NoError(t, err)
	assert.Equal(t, []string{"learning-notes-A", "learning-notes-A-active"}, keys)
}

func TestOpenProfileBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendSQLite, BackendFile} {
		t.Run(backend, func(t *testing.T) {
			p, err := OpenProfile(backend, filepath.Join(dir, backend, "profile"))
			require.NoError(t, err)
			defer p.Close()

			require.NoError(t, p.Set("learning-notes-B", "[]"))
			require.NoError(t, p.Set("learning-notes-A", "[]"))
			require.NoError(t, p.Set("mfin_ai_config", "{}"))

			keys, err := p.Keys("learning-notes-")
			require.NoError(t, err)
			assert.Equal(t, []string{"learning-notes-A", "learning-notes-B"}, keys)
		})
	}

	_, err := OpenProfile("redis", filepath.Join(dir, "x"))
	assert.Error(t, err)
}

func TestFileStoreKeysOnMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	keys, err := fs.Keys("")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
