package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエスト ID を運ぶヘッダー名です。
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

const maxRequestIDLength = 128

// RequestID はリクエスト ID をコンテキストとレスポンスヘッダーに設定します。
// クライアントが妥当な ID を送ってきた場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom は RequestID ミドルウェアが設定した ID を返します。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
