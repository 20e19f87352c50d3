package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// RoutineHandler handles routine templates and their assignment to members
type RoutineHandler struct {
	base
	routineService *services.RoutineService
}

// NewRoutineHandler creates a new routine handler
func NewRoutineHandler(routineService *services.RoutineService, policy *access.Policy, logger *logrus.Logger) *RoutineHandler {
	return &RoutineHandler{
		base:           newBase(policy, logger),
		routineService: routineService,
	}
}

// List handles GET /api/v1/routines
func (h *RoutineHandler) List(c *gin.Context) {
	routines, err := h.routineService.List(c.Request.Context(), identityOf(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routines": routines, "count": len(routines)})
}

// Get handles GET /api/v1/routines/:id
func (h *RoutineHandler) Get(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceRoutines, access.ActionRead)
	if !ok {
		return
	}

	routine, err := h.routineService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// Create handles POST /api/v1/routines
func (h *RoutineHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceRoutines, access.ActionCreate)
	if !ok {
		return
	}

	routine, err := h.routineService.Create(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

// AppendExercise handles POST /api/v1/routines/:id/exercises
func (h *RoutineHandler) AppendExercise(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceRoutines, access.ActionCreate)
	if !ok {
		return
	}
	payload, ok := h.bindPayload(c, identity, access.ResourceRoutines, access.ActionCreate)
	if !ok {
		return
	}

	exercise, err := h.routineService.AppendExercise(c.Request.Context(), identity, id, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListAssignments handles GET /api/v1/routine-assignments?member_id=
func (h *RoutineHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.routineService.ListAssignments(c.Request.Context(), identityOf(c), queryMap(c, "member_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments, "count": len(assignments)})
}

// Assign handles POST /api/v1/routine-assignments
func (h *RoutineHandler) Assign(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceAssignments, access.ActionCreate)
	if !ok {
		return
	}

	assignment, err := h.routineService.Assign(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}
