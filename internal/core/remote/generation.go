package remote

import (
	"context"
	"fmt"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// generationRequest 生成服務請求
type generationRequest struct {
	Ingredients   []string `json:"ingredients"`
	MaxTime       int      `json:"max_time"`
	DifficultyMax int      `json:"difficulty_max"`
}

// GeneratedRecipe 生成服務回傳的食譜摘要。
// 上游欄位命名不統一（title/name、cook_time_min/time），兩種都接受。
type GeneratedRecipe struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	CookTimeMin int    `json:"cook_time_min"`
	Time        int    `json:"time"`
	Difficulty  int    `json:"difficulty"`
}

// DisplayName 優先採用 title，其次 name
func (g GeneratedRecipe) DisplayName() string {
	if g.Title != "" {
		return g.Title
	}
	return g.Name
}

// CookTime 優先採用 cook_time_min，其次 time
func (g GeneratedRecipe) CookTime() int {
	if g.CookTimeMin > 0 {
		return g.CookTimeMin
	}
	return g.Time
}

// GenerationClient LLM 食譜生成服務客戶端。單次調用，不重試。
type GenerationClient struct {
	client *resty.Client
	url    string
}

// NewGenerationClient 創建生成服務客戶端
func NewGenerationClient(url string, timeout time.Duration) *GenerationClient {
	return &GenerationClient{
		client: newHTTPClient(timeout).
			SetHeader("Content-Type", "application/json"),
		url: url,
	}
}

// Generate 請求生成服務推薦食譜。
// 錯誤一律帶 UpstreamError 分類：連線失敗 / 超時 / 協議錯誤。
func (c *GenerationClient) Generate(ctx context.Context, ingredients []string, maxTime, difficultyMax int) ([]GeneratedRecipe, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generationRequest{
			Ingredients:   ingredients,
			MaxTime:       maxTime,
			DifficultyMax: difficultyMax,
		}).
		Post(c.url)
	if err != nil {
		return nil, classifyTransportError("generation", err)
	}
	if resp.IsError() {
		return nil, common.NewUpstreamError("generation", common.UpstreamProtocolError,
			fmt.Errorf("generation service returned status %d", resp.StatusCode()))
	}

	var result []GeneratedRecipe
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.NewUpstreamError("generation", common.UpstreamProtocolError,
			fmt.Errorf("failed to parse generation response: %w", err))
	}
	return result, nil
}
