package embedding

import (
	"context"
	"fmt"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Provider 嵌入提供者介面：給定文字回傳固定維度的浮點向量
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// embedRequest Ollama 嵌入請求
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse Ollama 嵌入響應
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// OllamaProvider Ollama 嵌入提供者客戶端
type OllamaProvider struct {
	client *resty.Client
	model  string
}

// NewOllamaProvider 創建 Ollama 嵌入客戶端
func NewOllamaProvider(host, model string, timeout time.Duration) *OllamaProvider {
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &OllamaProvider{
		client: client,
		model:  model,
	}
}

// Embed 調用嵌入服務生成向量。非 2xx 或響應體異常都視為提供者失敗。
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	var result embedResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: p.model, Prompt: text}).
		SetResult(&result).
		Post("/api/embeddings")
	if err != nil {
		return nil, common.NewUpstreamError("embedding", common.UpstreamUnavailable, err)
	}
	if resp.IsError() {
		return nil, common.NewUpstreamError("embedding", common.UpstreamProtocolError,
			fmt.Errorf("embedding service returned status %d", resp.StatusCode()))
	}
	if len(result.Embedding) == 0 {
		return nil, common.NewUpstreamError("embedding", common.UpstreamProtocolError,
			fmt.Errorf("empty embedding in response"))
	}
	return result.Embedding, nil
}
