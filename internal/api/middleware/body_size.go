package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

// BodySizeLimit 請求體大小限制中間件。
// 主要擋下超過 image.max_size_bytes 的圖片上傳；
// Content-Length 不可信時由 MaxBytesReader 在讀取階段兜底。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.LogWarn("請求體超出大小限制",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("限制", maxSize),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    common.ErrInvalidImageSize.Message,
				"code":     common.ErrInvalidImageSize.Code,
				"max_size": maxSize,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}
