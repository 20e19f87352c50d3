package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/models"
)

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	store
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db DB, queryTimeout time.Duration) *AttendanceRepository {
	return &AttendanceRepository{store: newStore(db, queryTimeout)}
}

// List returns attendance matching filter, latest first. On equal date and time
// a check-in is listed before its check-out.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", len(args)))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		conditions = append(conditions, fmt.Sprintf("a.member_id = $%d", len(args)))
	}
	if filter.AssignedBy != nil {
		args = append(args, *filter.AssignedBy)
		conditions = append(conditions, fmt.Sprintf(
			"a.member_id IN (SELECT ra.member_id FROM routine_assignments ra WHERE ra.assigned_by = $%d AND ra.is_active)", len(args)))
	}

	query := `
		SELECT a.id, a.member_id, m.name AS member_name, a.date, a.time::text AS time, a.type,
		       a.created_by, a.created_at
		FROM attendance a
		LEFT JOIN members m ON m.id = a.member_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY a.date DESC, a.time DESC, CASE a.type WHEN 'CheckIn' THEN 0 ELSE 1 END, a.id`

	records := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, translateError(ctx, err, "list attendance")
	}
	return records, nil
}

// Create registers a check-in or check-out
func (r *AttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO attendance (id, member_id, date, time, type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query, a.ID, a.MemberID, a.Date, a.Time, a.Type, a.CreatedBy).Scan(&a.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "create attendance")
	}
	return nil
}
