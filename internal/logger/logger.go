package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Log is the global application logger. It defaults to a no-op logger so
// packages can log before Initialize is called (e.g. in tests).
var Log *zap.Logger = zap.NewNop()

// Initialize replaces the global logger with a production zap logger at the
// given level ("debug", "info", "warn", "error").
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl
	return nil
}

// correlationIDKey is the gin context key holding the per-request id.
const correlationIDKey = "correlation_id"

// RequestLogger tags every request with a correlation id and logs it on completion.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(correlationIDKey, id)

		start := time.Now()
		c.Next()

		Log.Info("request handled",
			zap.String("correlation_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// CorrelationID returns the request's correlation id, or an empty string when
// the middleware did not run (e.g. direct use-case invocation).
func CorrelationID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(correlationIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
