package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytplatform/internal/utils"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bots forward their own correlation id so log lines join up
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}
		requestID := utils.GenerateRequestID()

		c.Set("correlation_id", correlationID)
		c.Set("request_id", requestID)
		c.Header("X-Correlation-ID", correlationID)
		c.Header("X-Request-ID", requestID)

		ctx := c.Request.Context()
		ctx = utils.WithCorrelationID(ctx, correlationID)
		ctx = utils.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		utils.LogDebug(ctx, "Incoming request", utils.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"ip":     c.ClientIP(),
		})

		c.Next()

		fields := utils.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if clientID := c.GetString("client_id"); clientID != "" {
			fields["client_id"] = clientID
		}
		utils.LogInfo(ctx, "Request completed", fields)
	}
}
