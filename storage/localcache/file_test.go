package localcache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir, err := ioutil.TempDir("", "cache")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestFileStore(t *testing.T) {
	store, dir := newTestStore(t)

	t.Run("missing key is a miss, not an error", func(t *testing.T) {
		data, err := store.Get("colleges")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put("colleges", []byte(`[{"id":"1"}]`)))

		data, err := store.Get("colleges")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(data))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put("colleges", []byte(`[]`)))

		data, err := store.Get("colleges")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("survives a new store on the same dir", func(t *testing.T) {
		require.NoError(t, store.Put("colleges", []byte(`[{"id":"2"}]`)))

		reopened, err := NewFileStore(dir)
		require.NoError(t, err)
		data, err := reopened.Get("colleges")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"2"}]`, string(data))
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("colleges"))
		data, err := store.Get("colleges")
		require.NoError(t, err)
		assert.Nil(t, data)

		// deleting a missing key is a no-op
		require.NoError(t, store.Delete("colleges"))
	})

	t.Run("rejects path-traversing keys", func(t *testing.T) {
		_, err := store.Get("../etc/passwd")
		assert.Error(t, err)
		assert.Error(t, store.Put("a/b", nil))
	})
}
