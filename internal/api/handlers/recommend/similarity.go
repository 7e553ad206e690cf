package recommend

import (
	"net/http"

	"recipe-recommender/internal/core/similarity"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// testSimilarityRequest 相似度測試請求體
type testSimilarityRequest struct {
	Ingredient1 string `json:"ingredient1" binding:"required"`
	Ingredient2 string `json:"ingredient2" binding:"required"`
}

// HandleTestSimilarity 計算兩個食材的嵌入餘弦相似度（調試用端點）
func (h *Handler) HandleTestSimilarity(c *gin.Context) {
	var req testSimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	ctx := c.Request.Context()
	vec1 := h.cache.GetEmbedding(ctx, req.Ingredient1)
	vec2 := h.cache.GetEmbedding(ctx, req.Ingredient2)
	score := similarity.CosineSimilarity(vec1, vec2)

	c.JSON(http.StatusOK, gin.H{
		"ingredient1":      req.Ingredient1,
		"ingredient2":      req.Ingredient2,
		"similarity_score": score,
		"is_similar":       score >= h.engine.Threshold(),
	})
}

// HandleSimilarityStatus 回報相似度引擎狀態
func (h *Handler) HandleSimilarityStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"cached_embeddings":    h.cache.Size(),
		"similarity_threshold": h.engine.Threshold(),
		"provider_available":   h.cache.Ping(c.Request.Context()),
	})
}
