package embedding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("檔案不存在視為空快取", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
		embeddings, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, embeddings)
	})

	t.Run("損壞檔案回傳錯誤", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

		store := NewFileStore(path)
		_, err := store.Load()
		assert.Error(t, err)
	})

	t.Run("保存後重新載入", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		store := NewFileStore(path)

		original := map[string][]float64{
			"두부": {0.1, 0.2, 0.3},
			"양파": {0.4, 0.5, 0.6},
		}
		require.NoError(t, store.Save(original))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})

	t.Run("null 內容視為空快取", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		require.NoError(t, os.WriteFile(path, []byte("null"), 0644))

		store := NewFileStore(path)
		embeddings, err := store.Load()
		require.NoError(t, err)
		assert.NotNil(t, embeddings)
		assert.Empty(t, embeddings)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	embeddings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	require.NoError(t, store.Save(map[string][]float64{"두부": {0.1}}))
	assert.Equal(t, 1, store.SaveCount())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"두부": {0.1}}, loaded)
}
