package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"recipe-recommender/internal/core/corpus"
	"recipe-recommender/internal/core/embedding"
	coreRecommend "recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/core/remote"
	"recipe-recommender/internal/core/similarity"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type stubRecognizer struct {
	ingredients []string
	err         error
}

func (s *stubRecognizer) Recognize(context.Context, []byte, string) ([]string, error) {
	return s.ingredients, s.err
}

type stubGenerator struct {
	recipes []remote.GeneratedRecipe
	err     error
}

func (s *stubGenerator) Generate(context.Context, []string, int, int) ([]remote.GeneratedRecipe, error) {
	return s.recipes, s.err
}

type stubProvider struct {
	vectors map[string][]float64
}

func (p *stubProvider) Embed(_ context.Context, text string) ([]float64, error) {
	if vec, ok := p.vectors[text]; ok {
		return vec, nil
	}
	return nil, errors.New("unknown text")
}

func newTestHandler(recognizer coreRecommend.Recognizer, generator coreRecommend.Generator, provider embedding.Provider) *Handler {
	cfg := &config.Config{
		Recognition: config.UpstreamConfig{MaxRetries: 1, RetryDelay: time.Millisecond},
		Generation:  config.UpstreamConfig{MaxRetries: 1, RetryDelay: time.Millisecond},
	}
	cache := embedding.NewCache(provider, embedding.NewMemoryStore(), 2)
	engine := similarity.NewEngine(similarity.NewSynonymDict(), cache, 0.7, 3, true)
	loader := corpus.NewLoader(nil)
	orchestrator := coreRecommend.NewOrchestrator(recognizer, generator, engine, loader, cfg)
	return NewHandler(orchestrator, engine, cache)
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/recommend", h.HandleRecommend)
	router.POST("/enhanced-recommend", h.HandleEnhancedRecommend)
	router.POST("/recognize", h.HandleRecognize)
	router.POST("/recommend/image", h.HandleRecommendByImage)
	router.POST("/test-similarity", h.HandleTestSimilarity)
	router.GET("/similarity-status", h.HandleSimilarityStatus)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postImage(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "food.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleRecommend(t *testing.T) {
	t.Run("空食材列表回傳 400", func(t *testing.T) {
		router := newTestRouter(newTestHandler(nil, &stubGenerator{}, &stubProvider{}))

		w := postJSON(t, router, "/recommend", `{"ingredients": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("非 JSON 請求體回傳 400", func(t *testing.T) {
		router := newTestRouter(newTestHandler(nil, &stubGenerator{}, &stubProvider{}))

		w := postJSON(t, router, "/recommend", "not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("生成服務失敗仍回傳 200 帶回退標記", func(t *testing.T) {
		generator := &stubGenerator{err: common.NewUpstreamError("generation", common.UpstreamUnavailable, errors.New("boom"))}
		router := newTestRouter(newTestHandler(nil, generator, &stubProvider{}))

		w := postJSON(t, router, "/recommend", `{"ingredients": ["두부"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Recipes  []json.RawMessage `json:"recipes"`
			Fallback bool              `json:"fallback"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Fallback)
		assert.NotEmpty(t, resp.Recipes)
	})

	t.Run("生成服務成功回傳 200", func(t *testing.T) {
		generator := &stubGenerator{recipes: []remote.GeneratedRecipe{{Name: "두부조림"}}}
		router := newTestRouter(newTestHandler(nil, generator, &stubProvider{}))

		w := postJSON(t, router, "/recommend", `{"ingredients": ["두부"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Fallback bool `json:"fallback"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Fallback)
	})
}

func TestHandleEnhancedRecommend(t *testing.T) {
	router := newTestRouter(newTestHandler(nil, nil, &stubProvider{}))

	t.Run("回傳有匹配的食譜陣列", func(t *testing.T) {
		w := postJSON(t, router, "/enhanced-recommend", `{"ingredients": ["두부"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var recipes []struct {
			Name            string  `json:"name"`
			SimilarityScore float64 `json:"similarity_score"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
		require.NotEmpty(t, recipes)
		assert.Equal(t, "두부조림", recipes[0].Name)
		assert.Greater(t, recipes[0].SimilarityScore, 0.0)
	})

	t.Run("空食材列表回傳 400", func(t *testing.T) {
		w := postJSON(t, router, "/enhanced-recommend", `{"ingredients": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRecognize(t *testing.T) {
	t.Run("識別成功回傳食材列表", func(t *testing.T) {
		recognizer := &stubRecognizer{ingredients: []string{"두부", "양파"}}
		router := newTestRouter(newTestHandler(recognizer, nil, &stubProvider{}))

		w := postImage(t, router, "/recognize")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Ingredients []string `json:"ingredients"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"두부", "양파"}, resp.Ingredients)
	})

	t.Run("識別失敗回傳 503", func(t *testing.T) {
		recognizer := &stubRecognizer{err: common.NewUpstreamError("recognition", common.UpstreamProtocolError, errors.New("bad response"))}
		router := newTestRouter(newTestHandler(recognizer, nil, &stubProvider{}))

		w := postImage(t, router, "/recognize")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("缺少圖片回傳 400", func(t *testing.T) {
		router := newTestRouter(newTestHandler(&stubRecognizer{}, nil, &stubProvider{}))

		w := postJSON(t, router, "/recognize", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRecommendByImage(t *testing.T) {
	t.Run("識別失敗仍回傳 200 帶回退結果", func(t *testing.T) {
		recognizer := &stubRecognizer{err: common.NewUpstreamError("recognition", common.UpstreamUnavailable, errors.New("boom"))}
		router := newTestRouter(newTestHandler(recognizer, nil, &stubProvider{}))

		w := postImage(t, router, "/recommend/image")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Recipes  []json.RawMessage `json:"recipes"`
			Fallback bool              `json:"fallback"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Fallback)
		assert.NotEmpty(t, resp.Recipes)
	})

	t.Run("識別結果為空仍回傳 200 帶回退結果", func(t *testing.T) {
		recognizer := &stubRecognizer{ingredients: []string{}}
		router := newTestRouter(newTestHandler(recognizer, nil, &stubProvider{}))

		w := postImage(t, router, "/recommend/image")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Recipes  []json.RawMessage `json:"recipes"`
			Fallback bool              `json:"fallback"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Fallback)
		assert.NotEmpty(t, resp.Recipes)
	})

	t.Run("一站式流程回傳識別食材與食譜", func(t *testing.T) {
		recognizer := &stubRecognizer{ingredients: []string{"두부"}}
		generator := &stubGenerator{recipes: []remote.GeneratedRecipe{{Name: "두부조림"}}}
		router := newTestRouter(newTestHandler(recognizer, generator, &stubProvider{}))

		w := postImage(t, router, "/recommend/image")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Ingredients []string `json:"ingredients"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"두부"}, resp.Ingredients)
	})
}

func TestHandleTestSimilarity(t *testing.T) {
	provider := &stubProvider{vectors: map[string][]float64{
		"사이다": {1, 0},
		"콜라":  {1, 0.1},
	}}
	router := newTestRouter(newTestHandler(nil, nil, provider))

	t.Run("回傳餘弦相似度與判定", func(t *testing.T) {
		w := postJSON(t, router, "/test-similarity", `{"ingredient1": "사이다", "ingredient2": "콜라"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Score     float64 `json:"similarity_score"`
			IsSimilar bool    `json:"is_similar"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Greater(t, resp.Score, 0.9)
		assert.True(t, resp.IsSimilar)
	})

	t.Run("缺少欄位回傳 400", func(t *testing.T) {
		w := postJSON(t, router, "/test-similarity", `{"ingredient1": "사이다"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSimilarityStatus(t *testing.T) {
	router := newTestRouter(newTestHandler(nil, nil, &stubProvider{}))

	req := httptest.NewRequest(http.MethodGet, "/similarity-status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status    string  `json:"status"`
		Cached    int     `json:"cached_embeddings"`
		Threshold float64 `json:"similarity_threshold"`
		Available bool    `json:"provider_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.InDelta(t, 0.7, resp.Threshold, 1e-9)
	// stubProvider 不認得探測文字，視為提供者不可用
	assert.False(t, resp.Available)
}
