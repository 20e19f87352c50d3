package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database connection
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness. Database detail is only shown to callers
// presenting the public anon key.
type HealthHandler struct {
	db      Pinger
	anonKey string
	version string
	now     func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, anonKey, version string) *HealthHandler {
	return &HealthHandler{db: db, anonKey: anonKey, version: version, now: time.Now}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	start := h.now()
	pingErr := h.db.PingContext(ctx)
	latency := h.now().Sub(start)

	status, code := "healthy", http.StatusOK
	if pingErr != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	if !h.authorizedForDetail(c.Query("key")) {
		c.JSON(code, gin.H{"status": status})
		return
	}

	database := gin.H{"status": status, "latency_ms": latency.Milliseconds()}
	if pingErr != nil {
		database["error"] = pingErr.Error()
	}
	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"version":   h.version,
		"timestamp": h.now().Unix(),
	})
}

func (h *HealthHandler) authorizedForDetail(key string) bool {
	if h.anonKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.anonKey)) == 1
}
