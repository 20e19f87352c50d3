package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction names an audited event
type AuditAction string

const (
	AuditLoginSuccess      AuditAction = "login_success"
	AuditLoginFailed       AuditAction = "login_failed"
	AuditLogout            AuditAction = "logout"
	AuditMemberCreated     AuditAction = "member_created"
	AuditMemberUpdated     AuditAction = "member_updated"
	AuditMemberDeleted     AuditAction = "member_deleted"
	AuditMemberPhoto       AuditAction = "member_photo_uploaded"
	AuditPaymentRecorded   AuditAction = "payment_recorded"
	AuditStaffCreated      AuditAction = "staff_created"
	AuditStaffUpdated      AuditAction = "staff_updated"
	AuditRoutineCreated    AuditAction = "routine_created"
	AuditExerciseAppended  AuditAction = "exercise_appended"
	AuditAssignmentCreated AuditAction = "assignment_created"
	AuditProgressRecorded  AuditAction = "progress_recorded"
)

// AuditLog is an append-only record of a security or business event
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	ActorRole  *string         `json:"actor_role,omitempty" db:"actor_role"`
	Action     AuditAction     `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   *string         `json:"entity_id,omitempty" db:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// DashboardStats is the summary shown on the admin dashboard
type DashboardStats struct {
	TotalMembers      int     `json:"totalMembers" db:"total_members"`
	ActiveMembers     int     `json:"activeMembers" db:"active_members"`
	DelinquentMembers int     `json:"delinquentMembers" db:"delinquent_members"`
	MonthlyRevenue    float64 `json:"monthlyRevenue" db:"monthly_revenue"`
	TodayAttendance   int     `json:"todayAttendance" db:"today_attendance"`
	TotalStaff        int     `json:"totalStaff" db:"total_staff"`
}
