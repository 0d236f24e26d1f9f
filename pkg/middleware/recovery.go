package middleware

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// StackTrace enables logging the goroutine stack on panic.
	StackTrace bool

	// StackSize limits the captured stack in bytes.
	// Default: 4KB
	StackSize int
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	StackTrace: true,
	StackSize:  4 << 10,
}

// Recovery returns a middleware that recovers from panics and responds
// with a JSON 500 error.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	if config.StackSize <= 0 {
		config.StackSize = DefaultRecoveryConfig.StackSize
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []interface{}{
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				}
				if id := GetRequestID(c.Request.Context()); id != "" {
					fields = append(fields, "request_id", id)
				}
				if config.StackTrace {
					buf := make([]byte, config.StackSize)
					n := runtime.Stack(buf, false)
					fields = append(fields, "stack", string(buf[:n]))
				}
				logger.Errorw("panic recovered", fields...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    500,
					"message": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
