package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.yaml")

	store, err := NewFile(path, "correct horse")
	require.NoError(t, err)

	require.NoError(t, store.Set(KeySessionID, "deadbeef"))
	require.NoError(t, store.Set(KeyIV, "00112233445566778899aabbccddeeff"))

	value, err := store.Get(KeySessionID)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", value)

	// A fresh handle with the same passphrase must read the same values.
	reopened, err := NewFile(path, "correct horse")
	require.NoError(t, err)

	value, err = reopened.Get(KeySessionID)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", value)

	value, err = reopened.Get(KeyIV)
	require.NoError(t, err)
	assert.Equal(t, "00112233445566778899aabbccddeeff", value)
}

func TestFileAbsentKey(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "keystore.yaml"), "pass")
	require.NoError(t, err)

	value, err := store.Get("never-written")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFileDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.yaml")

	store, err := NewFile(path, "pass")
	require.NoError(t, err)
	require.NoError(t, store.Set(KeySessionID, "deadbeef"))
	require.NoError(t, store.Delete(KeySessionID))

	// Deleting an absent key is a no-op, not an error.
	require.NoError(t, store.Delete(KeySessionID))

	reopened, err := NewFile(path, "pass")
	require.NoError(t, err)
	value, err := reopened.Get(KeySessionID)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFileWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.yaml")

	store, err := NewFile(path, "right")
	require.NoError(t, err)
	require.NoError(t, store.Set(KeySessionID, "deadbeef"))

	// The document parses fine; only value decryption fails.
	reopened, err := NewFile(path, "wrong")
	require.NoError(t, err)

	_, err = reopened.Get(KeySessionID)
	assert.Error(t, err)
}

func TestFileRejectsCorruptedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0600))

	_, err := NewFile(path, "pass")
	assert.Error(t, err)
}

func TestFileRequiresPassphrase(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "keystore.yaml"), "")
	assert.Error(t, err)

	_, err = NewFile("", "pass")
	assert.Error(t, err)
}

func TestFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.yaml")

	store, err := NewFile(path, "pass")
	require.NoError(t, err)
	require.NoError(t, store.Set(KeySessionID, "deadbeef"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%4)
			require.NoError(t, store.Set(key, "value"))
			_, err := store.Get(key)
			require.NoError(t, err)
			require.NoError(t, store.Delete(key))
		}(i)
	}
	wg.Wait()
}
