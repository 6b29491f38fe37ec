package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessLog はリクエストごとに 1 行のアクセスログを出力します。
// logger が nil の場合は標準ロガーを利用します。
func AccessLog(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Printf("request_id=%s method=%s path=%s status=%d latency=%s client=%s",
			RequestIDFrom(c),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
		)
	}
}
