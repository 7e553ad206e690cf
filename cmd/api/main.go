package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-recommender/internal/api"
	"recipe-recommender/internal/core/embedding"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("embedding_host", cfg.Embedding.Host),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("recognition_url", cfg.Recognition.URL),
		zap.String("generation_url", cfg.Generation.URL),
	)

	// 初始化嵌入提供者與持久層
	provider := embedding.NewOllamaProvider(cfg.Embedding.Host, cfg.Embedding.Model, cfg.Embedding.Timeout)

	var store embedding.Store
	if cfg.Embedding.RedisAddr != "" {
		redisStore, err := embedding.NewRedisStore(cfg.Embedding.RedisAddr)
		if err != nil {
			// Redis 不可達時退回檔案持久層，不阻止啟動
			common.LogWarn("Redis 連線失敗，改用檔案持久層",
				zap.String("addr", cfg.Embedding.RedisAddr),
				zap.Error(err),
			)
			store = embedding.NewFileStore(cfg.Embedding.CacheFile)
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	} else {
		store = embedding.NewFileStore(cfg.Embedding.CacheFile)
	}

	// 初始化嵌入快取
	cache := embedding.NewCache(provider, store, cfg.Embedding.Dimension)

	// 設置路由
	router, err := api.SetupRouter(cfg, cache)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
