package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// IdentityContextKey is the key used to store the caller's identity in Gin context
const IdentityContextKey = "identity"

// SessionResolver turns a bearer token into the identity of an open session
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (access.Identity, error)
}

// AuthMiddleware creates a middleware that validates session tokens
func AuthMiddleware(resolver SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := logger.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			entry.Warn("Auth failed: missing authorization header")
			abortUnauthorized(c, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			entry.Warn("Auth failed: invalid authorization format")
			abortUnauthorized(c, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			entry.Warn("Auth failed: empty token")
			abortUnauthorized(c, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
			return
		}

		identity, err := resolver.ResolveSession(c.Request.Context(), tokenString)
		if err != nil {
			var authnErr *services.AuthenticationError
			var storageErr *services.StorageError
			switch {
			case errors.As(err, &authnErr) && authnErr.Reason == services.AuthExpired:
				entry.Info("Auth failed: session expired")
				abortUnauthorized(c, "token_expired", "Session has expired. Please log in again.", "TOKEN_EXPIRED")
			case errors.As(err, &authnErr):
				entry.Warn("Auth failed: invalid session token")
				abortUnauthorized(c, "invalid_token", "Invalid session token", "INVALID_TOKEN")
			case errors.As(err, &storageErr):
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":          "internal_error",
					"message":        "Could not verify session",
					"correlation_id": storageErr.CorrelationID,
				})
				c.Abort()
			default:
				entry.WithError(err).Error("Auth failed: session lookup error")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "Could not verify session",
				})
				c.Abort()
			}
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, errCode, message, code string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
	c.Abort()
}

// GetIdentity retrieves the caller's identity from Gin context
func GetIdentity(c *gin.Context) (access.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return access.Identity{}, false
	}

	identity, ok := value.(access.Identity)
	if !ok {
		return access.Identity{}, false
	}

	return identity, true
}

// MustGetIdentity retrieves the identity or panics. Only use on routes behind AuthMiddleware.
func MustGetIdentity(c *gin.Context) access.Identity {
	identity, exists := GetIdentity(c)
	if !exists {
		panic("identity not found in context - auth middleware not applied")
	}
	return identity
}
