package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// MerchantIDKey is the context key for merchant ID.
	MerchantIDKey = "merchant_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
)

// TokenClaims holds the validated identity carried by a bearer token.
type TokenClaims struct {
	MerchantID uuid.UUID
	Email      string
}

// JWTValidator defines the interface for bearer token validation.
type JWTValidator interface {
	ValidateToken(token string) (*TokenClaims, error)
}

// Auth returns a middleware that validates bearer tokens.
// If the token is valid, it sets merchant_id and email in the context.
// If optional is true, the middleware will not abort on missing/invalid tokens.
func Auth(validator JWTValidator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "authorization header required",
				})
			}
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "invalid or expired token",
				})
			}
			c.Next()
			return
		}

		c.Set(MerchantIDKey, claims.MerchantID)
		c.Set(EmailKey, claims.Email)

		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid bearer token.
func RequireAuth(validator JWTValidator) gin.HandlerFunc {
	return Auth(validator, false)
}

// OptionalAuth returns a middleware that optionally validates bearer tokens.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return Auth(validator, true)
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}

// GetMerchantID returns the merchant ID from context.
// Returns uuid.Nil if not found.
func GetMerchantID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(MerchantIDKey); exists {
		if id, ok := val.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// IsAuthenticated returns true if the request carries a valid identity.
func IsAuthenticated(c *gin.Context) bool {
	return GetMerchantID(c) != uuid.Nil
}
