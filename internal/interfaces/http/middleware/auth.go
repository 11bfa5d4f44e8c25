package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/domain/entities"
)

const (
	// APIKeyHeader is the header carrying the merchant credential
	APIKeyHeader = "X-API-Key"
	// MerchantKey is the context key for the authenticated merchant
	MerchantKey = "merchant"
)

// Authenticator resolves an API key to its merchant.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*entities.Merchant, error)
}

// AuthMiddleware requires a valid merchant API key on the request.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "API key is required",
			})
			return
		}

		merchant, err := auth.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			return
		}

		c.Set(MerchantKey, merchant)
		c.Next()
	}
}

// GetMerchant gets the authenticated merchant from context
func GetMerchant(c *gin.Context) (*entities.Merchant, bool) {
	v, exists := c.Get(MerchantKey)
	if !exists {
		return nil, false
	}
	merchant, ok := v.(*entities.Merchant)
	return merchant, ok
}
