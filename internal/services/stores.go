package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

// The interfaces below are satisfied by the repositories in internal/database.

// MemberStore persists members
type MemberStore interface {
	List(ctx context.Context) ([]models.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	MemberNumberExists(ctx context.Context, memberNumber string) (bool, error)
	Create(ctx context.Context, m *models.Member) error
	Update(ctx context.Context, id uuid.UUID, apply func(m *models.Member) error) (*models.Member, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentStore persists payments together with the member billing state
type PaymentStore interface {
	List(ctx context.Context) ([]models.Payment, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
	Record(ctx context.Context, p *models.Payment, apply func(m *models.Member) error) (*models.Member, error)
}

// StaffStore persists staff users
type StaffStore interface {
	List(ctx context.Context) ([]models.StaffUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	Create(ctx context.Context, u *models.StaffUser) error
	Update(ctx context.Context, u *models.StaffUser) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AttendanceStore persists attendance events
type AttendanceStore interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	Create(ctx context.Context, a *models.Attendance) error
}

// RoutineStore persists routines and their exercises
type RoutineStore interface {
	List(ctx context.Context) ([]models.RoutineTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.RoutineTemplate, error)
	Create(ctx context.Context, routine *models.RoutineTemplate) error
	AppendExercise(ctx context.Context, exercise *models.ExerciseTemplate) error
}

// AssignmentStore persists routine assignments
type AssignmentStore interface {
	List(ctx context.Context, memberID *uuid.UUID) ([]models.RoutineAssignment, error)
	Create(ctx context.Context, a *models.RoutineAssignment) error
	DeactivateExpired(ctx context.Context, today models.Date) (int64, error)
}

// WorkoutSessionStore persists logged workouts
type WorkoutSessionStore interface {
	List(ctx context.Context, memberID *uuid.UUID) ([]models.WorkoutSession, error)
	Create(ctx context.Context, s *models.WorkoutSession) error
}

// ProgressStore persists body measurements together with the member's current values
type ProgressStore interface {
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.PhysicalProgress, error)
	Record(ctx context.Context, p *models.PhysicalProgress, apply func(m *models.Member) error) (*models.Member, error)
}

// SessionStore persists login sessions
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginAttemptStore persists failed logins
type LoginAttemptStore interface {
	CountSince(ctx context.Context, identifier, identifierType string, since time.Time) (int, time.Time, error)
	Record(ctx context.Context, identifier, identifierType string) error
	Clear(ctx context.Context, identifier, identifierType string) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditStore appends audit entries
type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// StatsStore computes dashboard aggregates
type StatsStore interface {
	Dashboard(ctx context.Context, today, monthStart models.Date) (*models.DashboardStats, error)
}

// PhotoUploader stores member photos and returns their public URL
type PhotoUploader interface {
	UploadMemberPhoto(ctx context.Context, memberID uuid.UUID, r io.Reader) (string, error)
}
