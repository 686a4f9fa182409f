package webhook

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the landing page's shared key.
const APIKeyHeader = "X-Webhook-API-Key"

// APIKeyAuthMiddleware accepts requests whose X-Webhook-API-Key matches one
// of the configured keys. With no keys configured every request is refused.
func APIKeyAuthMiddleware(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		if !keyAllowed(apiKey, keys) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}

func keyAllowed(candidate string, keys []string) bool {
	allowed := false
	for _, key := range keys {
		if key == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			allowed = true
		}
	}
	return allowed
}
