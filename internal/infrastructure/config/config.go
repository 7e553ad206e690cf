package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Embedding   EmbeddingConfig  `mapstructure:"embedding"`
	Similarity  SimilarityConfig `mapstructure:"similarity"`
	Recognition UpstreamConfig   `mapstructure:"recognition"`
	Generation  UpstreamConfig   `mapstructure:"generation"`
	Corpus      CorpusConfig     `mapstructure:"corpus"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// EmbeddingConfig 嵌入提供者配置
type EmbeddingConfig struct {
	Host      string        `mapstructure:"host"`
	Model     string        `mapstructure:"model"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheFile string        `mapstructure:"cache_file"`
	RedisAddr string        `mapstructure:"redis_addr"` // 非空時改用 Redis 持久化
}

// SimilarityConfig 相似度引擎配置
type SimilarityConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	TopK      int     `mapstructure:"top_k"`
	UseEmbed  bool    `mapstructure:"use_embed"`
}

// UpstreamConfig 上游服務配置（識別服務與生成服務共用結構）
type UpstreamConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// CorpusConfig 食譜語料庫配置
type CorpusConfig struct {
	Paths []string `mapstructure:"paths"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("embedding.host", "OLLAMA_HOST")
	viper.BindEnv("embedding.model", "EMBEDDING_MODEL")
	viper.BindEnv("embedding.cache_file", "EMBEDDING_CACHE_FILE")
	viper.BindEnv("embedding.redis_addr", "EMBEDDING_REDIS_ADDR")
	viper.BindEnv("similarity.threshold", "SIMILARITY_THRESHOLD")
	viper.BindEnv("recognition.url", "VLM_RECOGNIZE_URL")
	viper.BindEnv("generation.url", "LLM_RECOMMEND_URL")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-recommender")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 嵌入提供者設定
	viper.SetDefault("embedding.host", "http://localhost:11434")
	viper.SetDefault("embedding.model", "nomic-embed-text")
	viper.SetDefault("embedding.dimension", 384)
	viper.SetDefault("embedding.timeout", "30s")
	viper.SetDefault("embedding.cache_file", "ingredient_embeddings_cache.json")
	viper.SetDefault("embedding.redis_addr", "")

	// 相似度引擎設定
	viper.SetDefault("similarity.threshold", 0.7)
	viper.SetDefault("similarity.top_k", 3)
	viper.SetDefault("similarity.use_embed", true)

	// 食材識別服務設定
	viper.SetDefault("recognition.url", "http://localhost:8000/recognize")
	viper.SetDefault("recognition.timeout", "30s")
	viper.SetDefault("recognition.max_retries", 3)
	viper.SetDefault("recognition.retry_delay", "2s")

	// 食譜生成服務設定
	viper.SetDefault("generation.url", "http://localhost:8002/recommend")
	viper.SetDefault("generation.timeout", "60s")
	viper.SetDefault("generation.max_retries", 3)
	viper.SetDefault("generation.retry_delay", "1s")

	// 語料庫設定
	viper.SetDefault("corpus.paths", []string{
		"/app/data/recipes_updated.json",
		"./data/recipes_updated.json",
		"../data/recipes_updated.json",
	})

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	// dedup window 預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證嵌入設定
	if config.Embedding.Dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension")
	}

	// 驗證相似度設定
	if config.Similarity.Threshold < -1 || config.Similarity.Threshold > 1 {
		return fmt.Errorf("invalid similarity threshold")
	}
	if config.Similarity.TopK <= 0 {
		return fmt.Errorf("invalid similarity top_k")
	}

	// 驗證上游服務設定
	if config.Recognition.MaxRetries <= 0 {
		return fmt.Errorf("invalid recognition max retries")
	}
	if config.Generation.MaxRetries <= 0 {
		return fmt.Errorf("invalid generation max retries")
	}

	return nil
}
