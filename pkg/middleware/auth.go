package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuthConfig defines the config for BearerAuth middleware.
type BearerAuthConfig struct {
	// Secret is the expected bearer token. An empty secret disables
	// authentication.
	Secret string

	// SkipPaths is a list of paths to skip authentication.
	SkipPaths []string
}

// BearerAuth returns a middleware that requires a static bearer token
// in the Authorization header. Requests without a matching token get a
// JSON 401 response.
func BearerAuth(secret string) gin.HandlerFunc {
	return BearerAuthWithConfig(BearerAuthConfig{Secret: secret})
}

// BearerAuthWithConfig returns a BearerAuth middleware with custom config.
func BearerAuthWithConfig(config BearerAuthConfig) gin.HandlerFunc {
	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if config.Secret == "" || skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "Missing or malformed Authorization header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(config.Secret)) != 1 {
			abortUnauthorized(c, "Invalid API token")
			return
		}

		c.Next()
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": message,
	})
}
