package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// IdempotencyKeyHeader lets clients retry a payment without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment recording and history
type PaymentHandler struct {
	base
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, policy *access.Policy, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		base:           newBase(policy, logger),
		paymentService: paymentService,
	}
}

// List handles GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentService.List(c.Request.Context(), identityOf(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// Create handles POST /api/v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	identity := identityOf(c)
	payload, ok := h.bindPayload(c, identity, access.ResourcePayments, access.ActionCreate)
	if !ok {
		return
	}

	receipt, err := h.paymentService.Create(c.Request.Context(), identity, payload, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, receipt)
}

// SuggestedAmount handles GET /api/v1/payments/suggested-amount?plan=
func (h *PaymentHandler) SuggestedAmount(c *gin.Context) {
	suggestion, err := h.paymentService.SuggestedAmount(identityOf(c), c.Query("plan"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
