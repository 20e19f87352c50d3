package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/ironforge/gym-admin-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ClientInfo stores the caller's address and user agent on the request context
// so services can attach them to audit entries.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := services.WithClientInfo(c.Request.Context(), services.ClientInfo{
			IPAddress: utils.GetRealIP(c),
			UserAgent: utils.GetUserAgent(c),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         utils.GetRealIP(c),
		}
		if identity, ok := GetIdentity(c); ok {
			fields["subject_id"] = identity.SubjectID
			fields["role"] = identity.Role
		}

		entry := logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}
