package api

import (
	"context"
	"net/http"
	"time"

	"recipe-recommender/internal/api/handlers/health"
	recommendHandler "recipe-recommender/internal/api/handlers/recommend"
	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/core/corpus"
	"recipe-recommender/internal/core/embedding"
	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/core/remote"
	"recipe-recommender/internal/core/similarity"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cache *embedding.Cache) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Image.MaxSizeBytes))

	// 請求去重
	router.Use(middleware.Deduplication(cfg.DedupWindow))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.String("recognition_url", cfg.Recognition.URL),
		zap.String("generation_url", cfg.Generation.URL),
		zap.Float64("similarity_threshold", cfg.Similarity.Threshold),
	)

	// 初始化相似度引擎
	dict := similarity.NewSynonymDict()
	engine := similarity.NewEngine(dict, cache, cfg.Similarity.Threshold, cfg.Similarity.TopK, cfg.Similarity.UseEmbed)

	// 初始化語料庫載入器
	loader := corpus.NewLoader(cfg.Corpus.Paths)

	// 初始化上游服務客戶端
	recognizer := remote.NewRecognitionClient(cfg.Recognition.URL, cfg.Recognition.Timeout)
	generator := remote.NewGenerationClient(cfg.Generation.URL, cfg.Generation.Timeout)

	// 初始化推薦協調器
	orchestrator := recommend.NewOrchestrator(recognizer, generator, engine, loader, cfg)

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)

		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := recommendHandler.NewHandler(orchestrator, engine, cache)

		// 圖片食材識別
		api.POST("/recognize", handler.HandleRecognize)

		// 食材列表推薦（生成服務 + 本地回退）
		api.POST("/recommend", handler.HandleRecommend)

		// 圖片一站式推薦
		api.POST("/recommend/image", handler.HandleRecommendByImage)

		// 本地相似度推薦
		api.POST("/enhanced-recommend", handler.HandleEnhancedRecommend)

		// 相似度調試
		api.POST("/test-similarity", handler.HandleTestSimilarity)
		api.GET("/similarity-status", handler.HandleSimilarityStatus)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.Image.MaxSizeBytes),
	)

	return router, nil
}
