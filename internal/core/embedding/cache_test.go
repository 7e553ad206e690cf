package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 回傳固定向量或固定錯誤，並記錄調用次數
type fakeProvider struct {
	vector []float64
	err    error
	calls  int
}

func (p *fakeProvider) Embed(_ context.Context, _ string) ([]float64, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.vector, nil
}

func TestCacheGetEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("未命中調用提供者並寫穿持久層", func(t *testing.T) {
		provider := &fakeProvider{vector: []float64{0.1, 0.2, 0.3}}
		store := NewMemoryStore()
		cache := NewCache(provider, store, 3)

		vec := cache.GetEmbedding(ctx, "두부")
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
		assert.Equal(t, 1, provider.calls)
		assert.Equal(t, 1, store.SaveCount())
		assert.Equal(t, 1, cache.Size())
	})

	t.Run("命中不再調用提供者", func(t *testing.T) {
		provider := &fakeProvider{vector: []float64{0.1, 0.2, 0.3}}
		store := NewMemoryStore()
		cache := NewCache(provider, store, 3)

		first := cache.GetEmbedding(ctx, "두부")
		second := cache.GetEmbedding(ctx, "두부")
		assert.Equal(t, first, second)
		assert.Equal(t, 1, provider.calls)
		assert.Equal(t, 1, store.SaveCount())
	})

	t.Run("重啟後從持久層恢復", func(t *testing.T) {
		provider := &fakeProvider{vector: []float64{0.1, 0.2, 0.3}}
		store := NewMemoryStore()

		cache := NewCache(provider, store, 3)
		original := cache.GetEmbedding(ctx, "두부")

		// 以同一持久層重建快取，模擬進程重啟
		restarted := NewCache(&fakeProvider{err: errors.New("must not be called")}, store, 3)
		recovered := restarted.GetEmbedding(ctx, "두부")
		assert.Equal(t, original, recovered)
		assert.Equal(t, 1, restarted.Size())
	})

	t.Run("提供者失敗回傳零向量哨兵且不快取", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("connection refused")}
		store := NewMemoryStore()
		cache := NewCache(provider, store, 4)

		vec := cache.GetEmbedding(ctx, "두부")
		assert.Equal(t, make([]float64, 4), vec)
		assert.Zero(t, cache.Size())
		assert.Zero(t, store.SaveCount())

		// 下次查詢重新嘗試提供者
		cache.GetEmbedding(ctx, "두부")
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("提供者恢復後正常快取", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("connection refused")}
		store := NewMemoryStore()
		cache := NewCache(provider, store, 3)

		cache.GetEmbedding(ctx, "두부")
		require.Zero(t, cache.Size())

		provider.err = nil
		provider.vector = []float64{0.5, 0.5, 0.5}
		vec := cache.GetEmbedding(ctx, "두부")
		assert.Equal(t, []float64{0.5, 0.5, 0.5}, vec)
		assert.Equal(t, 1, cache.Size())
	})
}

func TestCachePing(t *testing.T) {
	ctx := context.Background()

	t.Run("提供者可用", func(t *testing.T) {
		cache := NewCache(&fakeProvider{vector: []float64{1}}, NewMemoryStore(), 1)
		assert.True(t, cache.Ping(ctx))
		// 探測結果不寫入快取
		assert.Zero(t, cache.Size())
	})

	t.Run("提供者不可用", func(t *testing.T) {
		cache := NewCache(&fakeProvider{err: errors.New("connection refused")}, NewMemoryStore(), 1)
		assert.False(t, cache.Ping(ctx))
	})
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	t.Run("載入時丟棄維度不符的條目", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(map[string][]float64{
			"두부": {0.1, 0.2, 0.3},
			"양파": {0.1, 0.2}, // 維度不符
		}))

		cache := NewCache(&fakeProvider{vector: []float64{1, 1, 1}}, store, 3)
		assert.Equal(t, 1, cache.Size())

		// 被丟棄的條目視為未命中，重新生成
		provider := &fakeProvider{vector: []float64{1, 1, 1}}
		cache = NewCache(provider, store, 3)
		cache.GetEmbedding(ctx, "양파")
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("持久層載入失敗以空快取啟動", func(t *testing.T) {
		store := NewFileStore("/nonexistent/dir/cache.json")
		cache := NewCache(&fakeProvider{vector: []float64{1}}, store, 1)
		assert.Zero(t, cache.Size())
	})
}
