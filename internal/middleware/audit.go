package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard-api/pkg/middleware/requestid"
)

// Audit logs admin actions after the handler ran. Failed requests are logged
// at warn level so rejected mutations remain traceable.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if session := SessionFromContext(c); session != nil {
			fields = append(fields, zap.String("username", session.Username), zap.String("session_id", session.ID))
		}

		if c.Writer.Status() >= 400 {
			logger.Warn("admin action rejected", fields...)
			return
		}
		logger.Info("admin action", fields...)
	}
}
