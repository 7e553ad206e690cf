package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// 連線逾時獨立於整體請求逾時，讓連不上的上游快速失敗進入重試
const connectTimeout = 5 * time.Second

// newHTTPClient 上游客戶端共用的 resty 設定
func newHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		})
}

// recognitionResponse 識別服務響應
type recognitionResponse struct {
	Ingredients []string `json:"ingredients"`
}

// RecognitionClient 食材識別服務客戶端（圖片進、食材列表出）。
// 單次調用，不重試；重試策略由協調器掌握。
type RecognitionClient struct {
	client *resty.Client
	url    string
}

// NewRecognitionClient 創建識別服務客戶端
func NewRecognitionClient(url string, timeout time.Duration) *RecognitionClient {
	return &RecognitionClient{
		client: newHTTPClient(timeout),
		url:    url,
	}
}

// Recognize 上傳圖片並取得識別出的食材列表。
// 錯誤一律帶 UpstreamError 分類：連線失敗 / 超時 / 協議錯誤。
func (c *RecognitionClient) Recognize(ctx context.Context, image []byte, filename string) ([]string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		Post(c.url)
	if err != nil {
		return nil, classifyTransportError("recognition", err)
	}
	if resp.IsError() {
		return nil, common.NewUpstreamError("recognition", common.UpstreamProtocolError,
			fmt.Errorf("recognition service returned status %d", resp.StatusCode()))
	}

	var result recognitionResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.NewUpstreamError("recognition", common.UpstreamProtocolError,
			fmt.Errorf("failed to parse recognition response: %w", err))
	}
	return result.Ingredients, nil
}

// classifyTransportError 區分超時與連線失敗
func classifyTransportError(service string, err error) *common.UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewUpstreamError(service, common.UpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.NewUpstreamError(service, common.UpstreamTimeout, err)
	}
	return common.NewUpstreamError(service, common.UpstreamUnavailable, err)
}
