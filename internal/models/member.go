package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
)

// MemberStatus represents the membership standing of a member
type MemberStatus string

const (
	MemberStatusActive     MemberStatus = "Active"
	MemberStatusInactive   MemberStatus = "Inactive"
	MemberStatusDelinquent MemberStatus = "Delinquent"
	MemberStatusSuspended  MemberStatus = "Suspended"
)

// LocksOut reports whether members in this status are refused sign-in
func (s MemberStatus) LocksOut() bool {
	return s == MemberStatusInactive || s == MemberStatusSuspended
}

// Member represents an enrolled gym member
type Member struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	MemberNumber     string       `json:"member_number" db:"member_number"`
	Name             string       `json:"name" db:"name"`
	Email            string       `json:"email" db:"email"`
	Phone            *string      `json:"phone,omitempty" db:"phone"`
	BirthDate        *Date        `json:"birth_date,omitempty" db:"birth_date"`
	Gender           *string      `json:"gender,omitempty" db:"gender"`
	Address          *string      `json:"address,omitempty" db:"address"`
	Plan             string       `json:"plan" db:"plan"`
	Status           MemberStatus `json:"status" db:"status"`
	StartDate        Date         `json:"start_date" db:"start_date"`
	NextPaymentDate  *Date        `json:"next_payment_date,omitempty" db:"next_payment_date"`
	Weight           *float64     `json:"weight,omitempty" db:"weight"`
	Height           *float64     `json:"height,omitempty" db:"height"`
	BMI              *float64     `json:"bmi,omitempty" db:"bmi"`
	BMICategory      *string      `json:"bmi_category,omitempty" db:"-"`
	EmergencyContact *string      `json:"emergency_contact,omitempty" db:"emergency_contact"`
	Notes            *string      `json:"notes,omitempty" db:"notes"`
	MedicalNotes     *string      `json:"medical_notes,omitempty" db:"medical_notes"`
	PhotoURL         *string      `json:"photo_url,omitempty" db:"photo_url"`
	PasswordHash     *string      `json:"-" db:"password_hash"` // Never expose password hash in JSON
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// Derive fills the read-time fields: the effective status at today and the BMI category.
// The stored status is only kept for the administrative states Inactive and Suspended.
func (m *Member) Derive(today time.Time) {
	var next *time.Time
	if m.NextPaymentDate != nil {
		next = &m.NextPaymentDate.Time
	}
	m.Status = MemberStatus(billing.MemberStatus(string(m.Status), next, today))

	m.BMICategory = nil
	if m.BMI != nil {
		if category, err := billing.ClassifyBMI(*m.BMI); err == nil {
			c := string(category)
			m.BMICategory = &c
		}
	}
}

// CreateMemberRequest is the validated payload for enrolling a member
type CreateMemberRequest struct {
	MemberNumber     *string  `json:"member_number" validate:"omitempty,min=1,max=50"`
	Name             string   `json:"name" validate:"required,min=2,max=100"`
	Email            string   `json:"email" validate:"required,email,max=255"`
	Phone            *string  `json:"phone" validate:"omitempty,max=20"`
	BirthDate        *string  `json:"birth_date" validate:"omitempty,date"`
	Gender           *string  `json:"gender" validate:"omitempty,max=20"`
	Address          *string  `json:"address" validate:"omitempty,max=500"`
	Plan             *string  `json:"plan" validate:"omitempty,oneof=Monthly Quarterly Semiannual Annual"`
	Status           *string  `json:"status" validate:"omitempty,oneof=Active Inactive Delinquent Suspended"`
	StartDate        *string  `json:"start_date" validate:"omitempty,date"`
	NextPaymentDate  *string  `json:"next_payment_date" validate:"omitempty,date"`
	Weight           *float64 `json:"weight" validate:"omitnil,gt=0,lte=500"`
	Height           *float64 `json:"height" validate:"omitnil,gte=50,lte=300"`
	EmergencyContact *string  `json:"emergency_contact" validate:"omitempty,max=200"`
	Notes            *string  `json:"notes" validate:"omitempty,max=1000"`
	MedicalNotes     *string  `json:"medical_notes" validate:"omitempty,max=1000"`
	Password         *string  `json:"password" validate:"omitempty,strong_password"`
}

// UpdateMemberRequest is the validated payload for a partial member update.
// Absent fields are left untouched.
type UpdateMemberRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Email            *string  `json:"email" validate:"omitempty,email,max=255"`
	Phone            *string  `json:"phone" validate:"omitempty,max=20"`
	BirthDate        *string  `json:"birth_date" validate:"omitempty,date"`
	Gender           *string  `json:"gender" validate:"omitempty,max=20"`
	Address          *string  `json:"address" validate:"omitempty,max=500"`
	Plan             *string  `json:"plan" validate:"omitempty,oneof=Monthly Quarterly Semiannual Annual"`
	Status           *string  `json:"status" validate:"omitempty,oneof=Active Inactive Delinquent Suspended"`
	StartDate        *string  `json:"start_date" validate:"omitempty,date"`
	NextPaymentDate  *string  `json:"next_payment_date"`
	Weight           *float64 `json:"weight" validate:"omitnil,gt=0,lte=500"`
	Height           *float64 `json:"height" validate:"omitnil,gte=50,lte=300"`
	EmergencyContact *string  `json:"emergency_contact" validate:"omitempty,max=200"`
	Notes            *string  `json:"notes" validate:"omitempty,max=1000"`
	MedicalNotes     *string  `json:"medical_notes" validate:"omitempty,max=1000"`
	Password         *string  `json:"password" validate:"omitempty,strong_password"`
}

// Check rejects direct edits of the next payment date, which only moves when a payment is recorded
func (r *UpdateMemberRequest) Check() []validator.FieldError {
	if r.NextPaymentDate != nil {
		return []validator.FieldError{{
			Field:   "next_payment_date",
			Reason:  validator.ReasonInvalid,
			Message: "cannot be changed directly, record a payment instead",
		}}
	}
	return nil
}

// MemberSelfEditableFields are the only fields a member may change on their own record
var MemberSelfEditableFields = map[string]bool{
	"phone":             true,
	"address":           true,
	"emergency_contact": true,
	"birth_date":        true,
	"gender":            true,
	"weight":            true,
	"height":            true,
	"password":          true,
}
