package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// MaxPhotoUploadBytes caps the multipart body accepted by the photo endpoint
const MaxPhotoUploadBytes = 10 << 20

// MemberHandler handles member records and the member-scoped sub-collections
type MemberHandler struct {
	base
	memberService   *services.MemberService
	paymentService  *services.PaymentService
	progressService *services.ProgressService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	memberService *services.MemberService,
	paymentService *services.PaymentService,
	progressService *services.ProgressService,
	policy *access.Policy,
	logger *logrus.Logger,
) *MemberHandler {
	return &MemberHandler{
		base:            newBase(policy, logger),
		memberService:   memberService,
		paymentService:  paymentService,
		progressService: progressService,
	}
}

// List handles GET /api/v1/members
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberService.List(c.Request.Context(), identityOf(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

// Get handles GET /api/v1/members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceMembers, access.ActionRead)
	if !ok {
		return
	}

	member, err := h.memberService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// Create handles POST /api/v1/members
func (h *MemberHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourceMembers, access.ActionCreate)
	if !ok {
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), identity, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// Update handles PUT /api/v1/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceMembers, access.ActionUpdate)
	if !ok {
		return
	}
	payload, ok := h.bindPayload(c, identity, access.ResourceMembers, access.ActionUpdate)
	if !ok {
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), identity, id, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// Delete handles DELETE /api/v1/members/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceMembers, access.ActionDelete)
	if !ok {
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}

// UploadPhoto handles PUT /api/v1/members/:id/photo (multipart field "photo")
func (h *MemberHandler) UploadPhoto(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceMembers, access.ActionUpdate)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoUploadBytes)
	header, err := c.FormFile("photo")
	if err != nil {
		if h.denied(c, identity, access.ResourceMembers, access.ActionUpdate) {
			return
		}
		h.respondError(c, validator.NewValidationError(validator.FieldError{
			Field:   "photo",
			Reason:  validator.ReasonRequired,
			Message: "an image file up to 10 MB is required",
		}))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	member, err := h.memberService.UploadPhoto(c.Request.Context(), identity, id, file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// ListPayments handles GET /api/v1/members/:id/payments
func (h *MemberHandler) ListPayments(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourcePayments, access.ActionRead)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByMember(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListProgress handles GET /api/v1/members/:id/progress
func (h *MemberHandler) ListProgress(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceProgress, access.ActionRead)
	if !ok {
		return
	}

	records, err := h.progressService.ListByMember(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": records, "count": len(records)})
}

// RecordProgress handles POST /api/v1/members/:id/progress
func (h *MemberHandler) RecordProgress(c *gin.Context) {
	identity := identityOf(c)
	id, ok := h.pathID(c, "id", identity, access.ResourceProgress, access.ActionCreate)
	if !ok {
		return
	}
	payload, ok := h.bindPayload(c, identity, access.ResourceProgress, access.ActionCreate)
	if !ok {
		return
	}

	record, err := h.progressService.Create(c.Request.Context(), identity, id, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
