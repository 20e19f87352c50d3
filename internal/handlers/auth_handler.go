package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	base
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, policy *access.Policy, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		base:        newBase(policy, logger),
		authService: authService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    "MALFORMED_JSON",
		})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"token":      response.Token,
			"expires_at": response.ExpiresAt,
		},
		"identity": response.Identity,
	})
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	identity, err := h.authService.CurrentIdentity(c.Request.Context(), identityOf(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": identity})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), identityOf(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
