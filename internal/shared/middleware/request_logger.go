package middleware

import (
	"time"

	"queueflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request with method, path, status and latency
func RequestLogger() gin.HandlerFunc {
	log := logger.GetDefault()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}
