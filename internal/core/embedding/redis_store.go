package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisHashKey = "ingredient:embeddings"

// RedisStore Redis 持久化：以單一 hash 保存食材文字到向量的對應表
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 創建 Redis 持久化並測試連接
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Load 整批載入 hash 中的所有嵌入，單筆解析失敗的條目直接略過
func (s *RedisStore) Load() (map[string][]float64, error) {
	fields, err := s.client.HGetAll(context.Background(), redisHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	embeddings := make(map[string][]float64, len(fields))
	for text, raw := range fields {
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			continue
		}
		embeddings[text] = vec
	}
	return embeddings, nil
}

// Save 保存完整快照到 hash
func (s *RedisStore) Save(embeddings map[string][]float64) error {
	if len(embeddings) == 0 {
		return nil
	}

	pairs := make([]interface{}, 0, len(embeddings)*2)
	for text, vec := range embeddings {
		data, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		pairs = append(pairs, text, data)
	}

	if err := s.client.HSet(context.Background(), redisHashKey, pairs...).Err(); err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
