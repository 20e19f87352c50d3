package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole is the role a staff user acts under
type StaffRole string

const (
	StaffRoleAdministrator StaffRole = "Administrator"
	StaffRoleTrainer       StaffRole = "Trainer"
	StaffRoleReception     StaffRole = "Reception"
)

// StaffStatus represents the employment state of a staff user
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "Active"
	StaffStatusInactive StaffStatus = "Inactive"
	StaffStatusOnLeave  StaffStatus = "OnLeave"
)

// DefaultShift is assigned when a staff user is created without one
const DefaultShift = "Unassigned"

// StaffUser represents an employee who can log into the admin backend
type StaffUser struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Phone        string      `json:"phone" db:"phone"`
	Role         StaffRole   `json:"role" db:"role"`
	Shift        string      `json:"shift" db:"shift"`
	Status       StaffStatus `json:"status" db:"status"`
	HireDate     *Date       `json:"hire_date,omitempty" db:"hire_date"`
	PasswordHash string      `json:"-" db:"password_hash"` // Never expose password hash in JSON
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateStaffRequest is the validated payload for creating a staff user
type CreateStaffRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,strong_password"`
	Phone    string  `json:"phone" validate:"required,phone"`
	Role     string  `json:"role" validate:"required,oneof=Administrator Trainer Reception"`
	Shift    *string `json:"shift" validate:"omitempty,max=50"`
	Status   *string `json:"status" validate:"omitempty,oneof=Active Inactive OnLeave"`
	HireDate *string `json:"hire_date" validate:"omitempty,date"`
}

// UpdateStaffRequest is the validated payload for a partial staff update
type UpdateStaffRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,strong_password"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Role     *string `json:"role" validate:"omitempty,oneof=Administrator Trainer Reception"`
	Shift    *string `json:"shift" validate:"omitempty,max=50"`
	Status   *string `json:"status" validate:"omitempty,oneof=Active Inactive OnLeave"`
	HireDate *string `json:"hire_date" validate:"omitempty,date"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}
