package auth

import (
	"errors"
	"net/http"
	"strings"

	"ollamagate/internal/db"
	"ollamagate/internal/model"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key under which the authenticated API key
// row is stored.
const ContextKey = "api_key"

// BearerToken extracts the bearer token from a request, or "" if absent.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Middleware authenticates requests with an Authorization bearer key.
// Unknown and inactive keys are rejected identically with 401.
func Middleware(dbService db.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}

		apiKey, err := dbService.VerifyAPIKey(token)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		c.Set(ContextKey, apiKey)
		c.Next()
	}
}

// KeyFromContext returns the authenticated key row set by Middleware.
func KeyFromContext(c *gin.Context) (*model.APIKey, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	apiKey, ok := v.(*model.APIKey)
	return apiKey, ok
}

// AdminMiddleware protects the admin surface with HTTP basic auth.
func AdminMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth || user != "admin" || password != adminPassword {
			c.Header("WWW-Authenticate", `Basic realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
