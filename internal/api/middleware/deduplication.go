package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// Deduplicator 請求去重器：短窗口內的相同 POST 請求直接拒絕
type Deduplicator struct {
	mu       sync.RWMutex
	requests map[string]time.Time
	window   time.Duration
}

// NewDeduplicator 創建去重器並啟動自動清理
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	d := &Deduplicator{
		requests: make(map[string]time.Time),
		window:   window,
	}
	go d.startCleanup()
	return d
}

// startCleanup 定期清除過期指紋
func (d *Deduplicator) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		d.mu.Lock()
		for k, t := range d.requests {
			if now.Sub(t) > 10*d.window {
				delete(d.requests, k)
			}
		}
		d.mu.Unlock()
	}
}

// seen 檢查指紋是否在窗口內出現過，未出現則記錄
func (d *Deduplicator) seen(fingerprint string) bool {
	now := time.Now()

	d.mu.RLock()
	lastTime, exists := d.requests[fingerprint]
	d.mu.RUnlock()
	if exists && now.Sub(lastTime) <= d.window {
		return true
	}

	d.mu.Lock()
	d.requests[fingerprint] = now
	d.mu.Unlock()
	return false
}

// Deduplication 請求去重中間件
func Deduplication(window time.Duration) gin.HandlerFunc {
	dedup := NewDeduplicator(window)

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if dedup.seen(fingerprint) {
			c.JSON(429, gin.H{
				"error": "Request too frequent",
				"code":  "TOO_MANY_REQUESTS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
