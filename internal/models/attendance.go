package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceType distinguishes entries from exits
type AttendanceType string

const (
	AttendanceCheckIn  AttendanceType = "CheckIn"
	AttendanceCheckOut AttendanceType = "CheckOut"
)

// Attendance is an immutable check-in or check-out event
type Attendance struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	MemberID   uuid.UUID      `json:"member_id" db:"member_id"`
	MemberName *string        `json:"member_name,omitempty" db:"member_name"`
	Date       Date           `json:"date" db:"date"`
	Time       string         `json:"time" db:"time"`
	Type       AttendanceType `json:"type" db:"type"`
	CreatedBy  *uuid.UUID     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// AttendanceFilter narrows an attendance listing
type AttendanceFilter struct {
	Date       *Date
	MemberID   *uuid.UUID
	AssignedBy *uuid.UUID // only members with an active assignment from this trainer
}

// CreateAttendanceRequest is the validated payload for registering attendance.
// Date and time default to the current moment.
type CreateAttendanceRequest struct {
	MemberID string  `json:"member_id" validate:"required,uuid"`
	Date     *string `json:"date" validate:"omitempty,date"`
	Time     *string `json:"time" validate:"omitempty,clock"`
	Type     string  `json:"type" validate:"required,oneof=CheckIn CheckOut"`
}
