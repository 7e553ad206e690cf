package recommend

import (
	"io"
	"net/http"

	coreRecommend "recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recommendRequest 推薦請求體
type recommendRequest struct {
	Ingredients   []string `json:"ingredients"`
	MaxTime       int      `json:"max_time"`
	DifficultyMax int      `json:"difficulty_max"`
	UseSimilarity *bool    `json:"use_similarity"`
	Threshold     float64  `json:"similarity_threshold"`
}

// toCoreRequest 轉換為協調器請求，use_similarity 缺省視為啟用
func (r *recommendRequest) toCoreRequest() coreRecommend.Request {
	useSimilarity := true
	if r.UseSimilarity != nil {
		useSimilarity = *r.UseSimilarity
	}
	return coreRecommend.Request{
		Ingredients:   r.Ingredients,
		MaxTime:       r.MaxTime,
		DifficultyMax: r.DifficultyMax,
		UseSimilarity: useSimilarity,
		Threshold:     r.Threshold,
	}
}

// HandleRecommend 完整推薦流程：生成服務優先，失敗時本地回退
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
	}

	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	result, err := h.orchestrator.Recommend(c.Request.Context(), req.toCoreRequest())
	if err != nil {
		if common.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "EMPTY_INGREDIENTS",
			})
			return
		}
		// 協調器的本地回退保證不會走到這裡；保險起見仍處理
		common.LogError("推薦失敗",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": common.ErrInternalError.Message,
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes":  result.Recipes,
		"fallback": result.Fallback,
	})
}

// HandleEnhancedRecommend 本地相似度推薦（不調用生成服務）
func (h *Handler) HandleEnhancedRecommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	result, err := h.orchestrator.RecommendLocal(c.Request.Context(), req.toCoreRequest())
	if err != nil {
		if common.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "EMPTY_INGREDIENTS",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": common.ErrInternalError.Message,
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, result.Recipes)
}

// HandleRecognize 圖片識別：上傳圖片、回傳識別出的食材列表
func (h *Handler) HandleRecognize(c *gin.Context) {
	image, filename, ok := h.readImageFile(c)
	if !ok {
		return
	}

	ingredients, err := h.orchestrator.RecognizeIngredients(c.Request.Context(), image, filename)
	if err != nil {
		common.LogError("食材識別失敗", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": common.ErrServiceUnavailable.Message,
			"code":  common.ErrCodeServiceUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
	})
}

// HandleRecommendByImage 圖片進、推薦食譜出的一站式流程
func (h *Handler) HandleRecommendByImage(c *gin.Context) {
	image, filename, ok := h.readImageFile(c)
	if !ok {
		return
	}

	req := coreRecommend.Request{UseSimilarity: true}
	result, err := h.orchestrator.RecommendByImage(c.Request.Context(), image, filename, req)
	if err != nil {
		if common.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "EMPTY_INGREDIENTS",
			})
			return
		}
		common.LogError("圖片推薦失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": common.ErrInternalError.Message,
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingredients": result.Ingredients,
		"recipes":     result.Recipes,
		"fallback":    result.Fallback,
	})
}

// readImageFile 讀取 multipart 上傳的圖片檔案
func (h *Handler) readImageFile(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidImageFormat.Message,
			"code":  common.ErrInvalidImageFormat.Code,
		})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidImageFormat.Message,
			"code":  common.ErrInvalidImageFormat.Code,
		})
		return nil, "", false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidImageFormat.Message,
			"code":  common.ErrInvalidImageFormat.Code,
		})
		return nil, "", false
	}

	return image, fileHeader.Filename, true
}
