package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// WorkoutHandler handles logged workout sessions
type WorkoutHandler struct {
	base
	workoutService *services.WorkoutService
}

// NewWorkoutHandler creates a new workout handler
func NewWorkoutHandler(workoutService *services.WorkoutService, policy *access.Policy, logger *logrus.Logger) *WorkoutHandler {
	return &WorkoutHandler{
		base:           newBase(policy, logger),
		workoutService: workoutService,
	}
}

// List handles GET /api/v1/workout-sessions?member_id=
func (h *WorkoutHandler) List(c *gin.Context) {
	sessions, err := h.workoutService.List(c.Request.Context(), identityOf(c), queryMap(c, "member_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// Create handles POST /api/v1/workout-sessions
func (h *WorkoutHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceWorkoutSessions, access.ActionCreate)
	if !ok {
		return
	}

	session, err := h.workoutService.Create(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}
