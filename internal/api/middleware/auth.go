package middleware

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/services/auth"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// HybridAuthMiddleware accepts either the static API key or a bearer token
// signed with JWT_SECRET. jwtService may be nil when only API keys are used.
func HybridAuthMiddleware(cfg *config.APIConfig, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey != "" && cfg.APIKey != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APIKey)) == 1 {
			c.Set("auth_method", "api_key")
			c.Next()
			return
		}

		if token := extractToken(c); token != "" && jwtService != nil {
			claims, err := jwtService.ValidateAccessToken(token)
			if err == nil {
				c.Set("client_id", claims.Client)
				c.Set("token_jti", claims.ID)
				c.Set("auth_method", "jwt")
				c.Next()
				return
			}
			utils.LogWarn(c.Request.Context(), "Rejected bearer token", utils.Fields{
				"error": err.Error(),
			})
		}

		c.JSON(401, gin.H{
			"error":      utils.NewUnauthorizedError(),
			"request_id": c.GetString("request_id"),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
		c.Abort()
	}
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken == "" {
		return ""
	}

	if len(bearerToken) > 7 && strings.ToLower(bearerToken[:7]) == "bearer " {
		return bearerToken[7:]
	}

	return bearerToken
}
