package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusOverdue PaymentStatus = "Overdue"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "Cash"
	PaymentMethodTransfer      PaymentMethod = "Transfer"
	PaymentMethodCard          PaymentMethod = "Card"
	PaymentMethodMobilePayment PaymentMethod = "MobilePayment"
)

// Payment is an immutable record of a membership payment. It keeps the member's
// name and number so the record survives the member being deleted.
type Payment struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	MemberID        uuid.UUID     `json:"member_id" db:"member_id"`
	MemberName      *string       `json:"member_name,omitempty" db:"member_name"`
	MemberNumber    *string       `json:"member_number,omitempty" db:"member_number"`
	Amount          float64       `json:"amount" db:"amount"`
	PaymentDate     Date          `json:"payment_date" db:"payment_date"`
	NextPaymentDate Date          `json:"next_payment_date" db:"next_payment_date"`
	Status          PaymentStatus `json:"status" db:"status"`
	Method          PaymentMethod `json:"method" db:"method"`
	Reference       *string       `json:"reference,omitempty" db:"reference"`
	Notes           *string       `json:"notes,omitempty" db:"notes"`
	IdempotencyKey  *string       `json:"-" db:"idempotency_key"`
	CreatedBy       *uuid.UUID    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// CreatePaymentRequest is the validated payload for recording a payment.
// A missing amount defaults to the suggested amount for the member's plan.
type CreatePaymentRequest struct {
	MemberID  string   `json:"member_id" validate:"required,uuid"`
	Amount    *float64 `json:"amount" validate:"omitnil,gt=0,lte=1000000"`
	Date      string   `json:"date" validate:"required,date"`
	Status    *string  `json:"status" validate:"omitempty,oneof=Paid Pending Overdue"`
	Method    string   `json:"method" validate:"required,oneof=Cash Transfer Card MobilePayment"`
	Reference *string  `json:"reference" validate:"omitempty,max=100"`
	Notes     *string  `json:"notes" validate:"omitempty,max=500"`
}

// PaymentReceipt is returned after recording a payment
type PaymentReceipt struct {
	Payment  *Payment `json:"payment"`
	Member   *Member  `json:"member"`
	Replayed bool     `json:"replayed"`
}
