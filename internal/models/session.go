package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session referenced by the token's jti
type Session struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SubjectID   uuid.UUID  `json:"subject_id" db:"subject_id"`
	SubjectType string     `json:"subject_type" db:"subject_type"`
	Role        string     `json:"role" db:"role"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	IPAddress   *string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   *string    `json:"user_agent,omitempty" db:"user_agent"`
	DeviceType  *string    `json:"device_type,omitempty" db:"device_type"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// IsUsable reports whether the session is neither revoked nor expired at now
func (s *Session) IsUsable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionIdentity describes who is logged in
type SessionIdentity struct {
	SubjectID   uuid.UUID  `json:"subject_id"`
	SubjectType string     `json:"subject_type"`
	Role        string     `json:"role"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	MemberID    *uuid.UUID `json:"member_id,omitempty"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Identity  SessionIdentity `json:"identity"`
}
