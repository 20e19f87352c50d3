package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// StaffHandler handles staff account management
type StaffHandler struct {
	base
	staffService *services.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService *services.StaffService, policy *access.Policy, logger *logrus.Logger) *StaffHandler {
	return &StaffHandler{
		base:         newBase(policy, logger),
		staffService: staffService,
	}
}

// List handles GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	staff, err := h.staffService.List(c.Request.Context(), identityOf(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff, "count": len(staff)})
}

// Get handles GET /api/v1/staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceStaff, access.ActionRead)
	if !ok {
		return
	}

	user, err := h.staffService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create handles POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceStaff, access.ActionCreate)
	if !ok {
		return
	}

	user, err := h.staffService.Create(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/v1/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceStaff, access.ActionUpdate)
	if !ok {
		return
	}
	payload, ok := h.bindPayload(c, identity, access.ResourceStaff, access.ActionUpdate)
	if !ok {
		return
	}

	user, err := h.staffService.Update(c.Request.Context(), identity, id, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
