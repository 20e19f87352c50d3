package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AttendanceHandler handles check-in records
type AttendanceHandler struct {
	base
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *services.AttendanceService, policy *access.Policy, logger *logrus.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		base:              newBase(policy, logger),
		attendanceService: attendanceService,
	}
}

// List handles GET /api/v1/attendance?date=YYYY-MM-DD&member_id=
func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.attendanceService.List(c.Request.Context(), identityOf(c), queryMap(c, "date", "member_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records, "count": len(records)})
}

// Create handles POST /api/v1/attendance
func (h *AttendanceHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceAttendance, access.ActionCreate)
	if !ok {
		return
	}

	record, err := h.attendanceService.Create(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
