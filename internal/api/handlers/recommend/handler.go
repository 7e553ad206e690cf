package recommend

import (
	"recipe-recommender/internal/core/embedding"
	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/core/similarity"
)

// Handler 推薦相關端點的處理器集合
type Handler struct {
	orchestrator *recommend.Orchestrator
	engine       *similarity.Engine
	cache        *embedding.Cache
}

// NewHandler 創建推薦處理器
func NewHandler(orchestrator *recommend.Orchestrator, engine *similarity.Engine, cache *embedding.Cache) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		engine:       engine,
		cache:        cache,
	}
}
