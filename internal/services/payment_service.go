package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/sirupsen/logrus"
)

// maxIdempotencyKeyLength matches the payments.idempotency_key column, counted in characters
const maxIdempotencyKeyLength = 255

// PaymentService records membership payments and keeps member billing in step
type PaymentService struct {
	gateway
	payments PaymentStore
	members  MemberStore
	prices   billing.PriceTable
}

// NewPaymentService creates a new payment service
func NewPaymentService(deps Deps, payments PaymentStore, members MemberStore, prices billing.PriceTable) *PaymentService {
	return &PaymentService{
		gateway:  newGateway(deps),
		payments: payments,
		members:  members,
		prices:   prices,
	}
}

// List returns every payment, latest payment date first
func (s *PaymentService) List(ctx context.Context, identity access.Identity) ([]models.Payment, error) {
	if _, err := s.authorize(identity, access.ResourcePayments, access.ActionRead); err != nil {
		return nil, err
	}

	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, s.fail("list payments", "payment", "", err)
	}
	return payments, nil
}

// ListByMember returns the payment history of one member
func (s *PaymentService) ListByMember(ctx context.Context, identity access.Identity, memberID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.authorizeMember(identity, access.ResourcePayments, access.ActionRead, memberID); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, s.fail("list member payments", "member", memberID.String(), err)
	}
	return payments, nil
}

// SuggestedAmount returns the default amount for plan
func (s *PaymentService) SuggestedAmount(identity access.Identity, plan string) (billing.Suggestion, error) {
	if _, err := s.authorize(identity, access.ResourcePayments, access.ActionRead); err != nil {
		return billing.Suggestion{}, err
	}
	return s.prices.SuggestedAmount(plan), nil
}

// Create records a payment and advances the member's next payment date in one transaction.
// When idempotencyKey was already used, the original payment is returned and nothing is written.
func (s *PaymentService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}, idempotencyKey string) (*models.PaymentReceipt, error) {
	if _, err := s.authorize(identity, access.ResourcePayments, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreatePaymentRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	idempotencyKey = normalizeIdempotencyKey(idempotencyKey)

	if idempotencyKey != "" {
		receipt, err := s.replay(ctx, idempotencyKey)
		if err != nil || receipt != nil {
			return receipt, err
		}
	}

	paymentDate, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		MemberID:        uuid.MustParse(req.MemberID),
		PaymentDate:     paymentDate,
		NextPaymentDate: models.NewDate(billing.NextPaymentDate(paymentDate.Time)),
		Status:          models.PaymentStatusPaid,
		Method:          models.PaymentMethod(req.Method),
		Reference:       req.Reference,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		payment.Status = models.PaymentStatus(*req.Status)
	}
	if idempotencyKey != "" {
		payment.IdempotencyKey = &idempotencyKey
	}
	if !identity.IsMember() {
		createdBy := identity.SubjectID
		payment.CreatedBy = &createdBy
	}

	member, err := s.payments.Record(ctx, payment, func(m *models.Member) error {
		if req.Amount != nil {
			payment.Amount = *req.Amount
		} else {
			payment.Amount = s.prices.SuggestedAmount(m.Plan).Amount
		}
		applyPayment(m, payment)
		return nil
	})
	if err != nil {
		var dupErr *database.DuplicateKeyError
		if idempotencyKey != "" && errors.As(err, &dupErr) && dupErr.Field() == "idempotency_key" {
			// A concurrent request with the same key committed first
			receipt, replayErr := s.replay(ctx, idempotencyKey)
			if replayErr != nil || receipt != nil {
				return receipt, replayErr
			}
		}
		return nil, s.fail("record payment", "member", req.MemberID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":        payment.ID,
		"member_id":         payment.MemberID,
		"amount":            payment.Amount,
		"next_payment_date": member.NextPaymentDate,
		"recorded_by":       identity.SubjectID,
	}).Info("Payment recorded")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditPaymentRecorded,
		EntityType: "payment",
		EntityID:   payment.ID.String(),
		Details: map[string]interface{}{
			"member_id": payment.MemberID,
			"amount":    payment.Amount,
			"method":    payment.Method,
		},
	})

	member.Derive(s.clock.Current())
	return &models.PaymentReceipt{Payment: payment, Member: member}, nil
}

// applyPayment moves the member's next payment date forward, never backwards,
// and returns the member to Active
func applyPayment(m *models.Member, p *models.Payment) {
	next := p.NextPaymentDate
	if m.NextPaymentDate == nil || m.NextPaymentDate.Time.Before(next.Time) {
		m.NextPaymentDate = &next
	}
	m.Status = models.MemberStatusActive
}

// replay returns the receipt of a payment already recorded under key, or nil when there is none
func (s *PaymentService) replay(ctx context.Context, key string) (*models.PaymentReceipt, error) {
	existing, err := s.payments.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get payment by idempotency key", "payment", "", err)
	}

	// The member may have been deleted since; the payment is still replayed
	member, err := s.members.GetByID(ctx, existing.MemberID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		member = nil
	case err != nil:
		return nil, s.fail("get member", "member", existing.MemberID.String(), err)
	default:
		member.Derive(s.clock.Current())
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": existing.ID,
		"member_id":  existing.MemberID,
	}).Info("Replayed payment for repeated idempotency key")

	return &models.PaymentReceipt{Payment: existing, Member: member, Replayed: true}, nil
}

// normalizeIdempotencyKey trims the header value, drops invalid UTF-8 and keeps at most
// maxIdempotencyKeyLength characters
func normalizeIdempotencyKey(key string) string {
	key = strings.TrimSpace(strings.ToValidUTF8(key, ""))
	if utf8.RuneCountInString(key) <= maxIdempotencyKeyLength {
		return key
	}
	return string([]rune(key)[:maxIdempotencyKeyLength])
}
