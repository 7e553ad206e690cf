package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestRateLimiter(t *testing.T) {
	t.Run("超過配額後拒絕", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("1.2.3.4"))
		assert.True(t, limiter.Allow("1.2.3.4"))
		assert.False(t, limiter.Allow("1.2.3.4"))
	})

	t.Run("不同客戶端獨立分桶", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		assert.True(t, limiter.Allow("1.2.3.4"))
		assert.False(t, limiter.Allow("1.2.3.4"))
		assert.True(t, limiter.Allow("5.6.7.8"))
	})
}

func TestDeduplicator(t *testing.T) {
	t.Run("窗口內相同指紋視為重複", func(t *testing.T) {
		d := NewDeduplicator(time.Minute)

		assert.False(t, d.seen("POST:/recommend:abc"))
		assert.True(t, d.seen("POST:/recommend:abc"))
		assert.False(t, d.seen("POST:/recommend:def"))
	})

	t.Run("窗口過期後不再視為重複", func(t *testing.T) {
		d := NewDeduplicator(time.Millisecond)

		assert.False(t, d.seen("POST:/recommend:abc"))
		time.Sleep(5 * time.Millisecond)
		assert.False(t, d.seen("POST:/recommend:abc"))
	})
}

func TestDeduplicationMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(Deduplication(time.Minute))
	router.POST("/recommend", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("相同請求體第二次被拒", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(`{"ingredients": ["두부"]}`))
		assert.Equal(t, http.StatusTooManyRequests, post(`{"ingredients": ["두부"]}`))
		assert.Equal(t, http.StatusOK, post(`{"ingredients": ["양파"]}`))
	})

	t.Run("GET 請求不去重", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestBodySizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodySizeLimit(16))
	router.POST("/recommend", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("超過限制回傳 413 帶錯誤代碼", func(t *testing.T) {
		body := bytes.Repeat([]byte("a"), 32)
		req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_IMAGE_SIZE")
	})

	t.Run("限制內正常通過", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewBufferString("small"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
