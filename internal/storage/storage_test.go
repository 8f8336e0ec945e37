package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenFile(dir)
	require.NoError(t, err)

	assert.Equal(t, "", s.Get(KeyBackendURL), "fresh store should be empty")

	require.NoError(t, s.Set(KeyBackendURL, "https://example.com/exec"))
	require.NoError(t, s.Set(KeyDemoMode, "true"))
	assert.FileExists(t, filepath.Join(dir, StateFile))

	// Reopen and verify values survived
	s2, err := OpenFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/exec", s2.Get(KeyBackendURL))
	assert.Equal(t, "true", s2.Get(KeyDemoMode))
}

func TestFileStore_Delete(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFile(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyDemoMode, "true"))
	require.NoError(t, s.Delete(KeyDemoMode))
	assert.Equal(t, "", s.Get(KeyDemoMode))

	// Deleting an absent key is fine
	require.NoError(t, s.Delete("never_set"))

	s2, err := OpenFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "", s2.Get(KeyDemoMode), "delete should persist")
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte("{invalid"), 0o600))

	_, err := OpenFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt state file")
}

func TestMemStore(t *testing.T) {
	s := NewMem()
	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, "v", s.Get("k"))
	require.NoError(t, s.Delete("k"))
	assert.Equal(t, "", s.Get("k"))
}
