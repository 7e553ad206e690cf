package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamErrorKind 上游服務錯誤分類
type UpstreamErrorKind string

const (
	// UpstreamUnavailable 連線被拒絕或無法連線
	UpstreamUnavailable UpstreamErrorKind = "unavailable"
	// UpstreamTimeout 超過調用期限
	UpstreamTimeout UpstreamErrorKind = "timeout"
	// UpstreamProtocolError 非 2xx 狀態碼或響應體無法解析
	UpstreamProtocolError UpstreamErrorKind = "protocol"
)

// UpstreamError 上游服務錯誤，帶錯誤分類供重試策略判斷
type UpstreamError struct {
	Service string            // 服務名稱（recognition / generation / embedding）
	Kind    UpstreamErrorKind // 錯誤分類
	Err     error             // 原始錯誤
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable 只有連線失敗與超時可重試，協議錯誤不重試
func (e *UpstreamError) Retryable() bool {
	return e.Kind == UpstreamUnavailable || e.Kind == UpstreamTimeout
}

// NewUpstreamError 創建上游服務錯誤
func NewUpstreamError(service string, kind UpstreamErrorKind, err error) *UpstreamError {
	return &UpstreamError{
		Service: service,
		Kind:    kind,
		Err:     err,
	}
}

// AsUpstreamError 檢查並取出上游服務錯誤
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "不支持的請求方法", http.StatusMethodNotAllowed, nil)
	ErrRequestTimeout   = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "無效的圖片格式", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "圖片大小超出限制", http.StatusBadRequest, nil)
	ErrEmptyIngredients   = NewError("EMPTY_INGREDIENTS", "食材列表為空", http.StatusBadRequest, nil)

	// ErrCorpusUnavailable 語料庫不可用，內部以預設語料恢復，不對外暴露
	ErrCorpusUnavailable = errors.New("recipe corpus unavailable")
	// ErrEmbeddingProvider 嵌入提供者調用失敗，內部以零向量恢復
	ErrEmbeddingProvider = errors.New("embedding provider failed")
)
