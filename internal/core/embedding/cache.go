package embedding

import (
	"context"
	"sync"

	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Cache 嵌入快取：食材文字到向量的對應，未命中時調用提供者並寫穿到持久層。
//
// 提供者失敗時回傳配置維度的零向量哨兵，且不寫入快取，
// 下次查詢會重新嘗試提供者（避免以哨兵污染快取）。
type Cache struct {
	provider  Provider
	store     Store
	dimension int

	mu         sync.RWMutex
	embeddings map[string][]float64
}

// NewCache 創建嵌入快取並整批載入持久層。
// 持久層缺失或損壞視為空快取；維度與配置不符的條目在載入時丟棄。
func NewCache(provider Provider, store Store, dimension int) *Cache {
	embeddings, err := store.Load()
	if err != nil {
		common.LogWarn("嵌入快取載入失敗，以空快取啟動", zap.Error(err))
		embeddings = map[string][]float64{}
	}

	// 丟棄維度不符的條目
	dropped := 0
	for text, vec := range embeddings {
		if len(vec) != dimension {
			delete(embeddings, text)
			dropped++
		}
	}

	common.LogInfo("嵌入快取已載入",
		zap.Int("條目數", len(embeddings)),
		zap.Int("維度不符丟棄", dropped),
		zap.Int("維度", dimension),
	)

	return &Cache{
		provider:   provider,
		store:      store,
		dimension:  dimension,
		embeddings: embeddings,
	}
}

// GetEmbedding 取得文字的嵌入向量。
// 命中回傳快取向量；未命中調用提供者並同步持久化；
// 提供者失敗回傳零向量哨兵（不快取）。此方法永不失敗。
func (c *Cache) GetEmbedding(ctx context.Context, text string) []float64 {
	c.mu.RLock()
	if vec, ok := c.embeddings[text]; ok {
		c.mu.RUnlock()
		common.LogCacheHit("embedding", text)
		return vec
	}
	c.mu.RUnlock()
	common.LogCacheMiss("embedding", text)

	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		common.LogError("嵌入生成失敗，回傳零向量",
			zap.String("文字", text),
			zap.Error(err),
		)
		return make([]float64, c.dimension)
	}

	// 寫入快取並同步持久化完整快照；單一寫入鎖序列化持久層操作
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddings[text] = vec

	if err := c.store.Save(c.snapshotLocked()); err != nil {
		common.LogWarn("嵌入快取持久化失敗", zap.Error(err))
	}
	return vec
}

// Ping 探測提供者可用性，結果不寫入快取
func (c *Cache) Ping(ctx context.Context) bool {
	_, err := c.provider.Embed(ctx, "ping")
	return err == nil
}

// Size 快取條目數
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.embeddings)
}

// snapshotLocked 複製目前快取內容，呼叫端必須持有寫鎖
func (c *Cache) snapshotLocked() map[string][]float64 {
	out := make(map[string][]float64, len(c.embeddings))
	for k, v := range c.embeddings {
		out[k] = v
	}
	return out
}
