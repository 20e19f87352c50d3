package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const paymentSelect = `
	SELECT p.id, p.member_id, COALESCE(m.name, p.member_name) AS member_name,
	       COALESCE(m.member_number, p.member_number) AS member_number, p.amount, p.payment_date, p.next_payment_date,
	       p.status, p.method, p.reference, p.notes, p.idempotency_key, p.created_by, p.created_at
	FROM payments p
	LEFT JOIN members m ON m.id = p.member_id
`

const paymentOrder = ` ORDER BY p.payment_date DESC, p.created_at DESC, p.id`

// PaymentRepository handles payment database operations.
// Payments are immutable once recorded.
type PaymentRepository struct {
	store
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB, queryTimeout time.Duration) *PaymentRepository {
	return &PaymentRepository{store: newStore(db, queryTimeout)}
}

// List returns all payments, most recent payment date first
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, paymentSelect+paymentOrder); err != nil {
		return nil, translateError(ctx, err, "list payments")
	}
	return payments, nil
}

// ListByMember returns the payment history of one member
func (r *PaymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Payment, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	payments := []models.Payment{}
	query := paymentSelect + ` WHERE p.member_id = $1` + paymentOrder
	if err := r.db.SelectContext(ctx, &payments, query, memberID); err != nil {
		return nil, translateError(ctx, err, "list member payments")
	}
	return payments, nil
}

// GetByIdempotencyKey finds a payment previously recorded with key
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var payment models.Payment
	query := paymentSelect + ` WHERE p.idempotency_key = $1`
	if err := r.db.GetContext(ctx, &payment, query, key); err != nil {
		return nil, translateError(ctx, err, "get payment by idempotency key")
	}
	return &payment, nil
}

// Record inserts a payment and updates its member in one transaction.
// The member row is locked first; apply receives it and must set the new billing state.
// If apply, the insert or the member update fails, nothing is written.
func (r *PaymentRepository) Record(ctx context.Context, p *models.Payment, apply func(m *models.Member) error) (*models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var member *models.Member
	err := r.withTx(ctx, "record payment", func(tx *sqlx.Tx) error {
		locked, err := lockMember(ctx, tx, p.MemberID)
		if err != nil {
			return err
		}

		if err := apply(locked); err != nil {
			return err
		}

		p.MemberName = &locked.Name
		p.MemberNumber = &locked.MemberNumber

		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}

		if err := saveMemberBilling(ctx, tx, locked); err != nil {
			return err
		}

		member = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

func insertPayment(ctx context.Context, tx *sqlx.Tx, p *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, member_id, member_name, member_number, amount, payment_date, next_payment_date,
			status, method, reference, notes, idempotency_key, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		p.ID, p.MemberID, p.MemberName, p.MemberNumber, p.Amount, p.PaymentDate, p.NextPaymentDate,
		p.Status, p.Method, p.Reference, p.Notes, p.IdempotencyKey, p.CreatedBy,
	).Scan(&p.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "create payment")
	}
	return nil
}
