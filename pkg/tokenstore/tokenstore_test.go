package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.Empty(t, s.Token())

	require.NoError(t, s.SetToken("tok-abc"))
	require.Equal(t, "tok-abc", s.Token())

	require.NoError(t, s.SetToken("tok-def"))
	require.Equal(t, "tok-def", s.Token(), "SetToken must overwrite")

	require.NoError(t, s.Clear())
	require.Empty(t, s.Token())
}

func TestFileStoreClearIdempotent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	require.Empty(t, s.Token())
}

func TestFileStoreMissingDirReadsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.Empty(t, s.Token())
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore(dir).SetToken("persisted"))
	require.Equal(t, "persisted", NewFileStore(dir).Token())
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.SetToken("secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreEnvOverride(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.SetToken("from-file"))

	t.Setenv(EnvToken, "from-env")
	require.Equal(t, "from-env", s.Token())
}

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	require.Empty(t, s.Token())

	require.NoError(t, s.SetToken("x"))
	require.Equal(t, "x", s.Token())

	require.NoError(t, s.Clear())
	require.Empty(t, s.Token())
	require.NoError(t, s.Clear())
}
