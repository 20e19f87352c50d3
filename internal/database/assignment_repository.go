package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const assignmentSelect = `
	SELECT ra.id, ra.member_id, m.name AS member_name, ra.routine_id, rt.name AS routine_name,
	       ra.assigned_by, ra.start_date, ra.end_date, ra.is_active, ra.notes, ra.created_at
	FROM routine_assignments ra
	LEFT JOIN members m ON m.id = ra.member_id
	LEFT JOIN routine_templates rt ON rt.id = ra.routine_id
`

// AssignmentRepository handles routine assignment database operations
type AssignmentRepository struct {
	store
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db DB, queryTimeout time.Duration) *AssignmentRepository {
	return &AssignmentRepository{store: newStore(db, queryTimeout)}
}

// List returns assignments, optionally for a single member, newest first
func (r *AssignmentRepository) List(ctx context.Context, memberID *uuid.UUID) ([]models.RoutineAssignment, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := assignmentSelect
	var args []interface{}
	if memberID != nil {
		query += ` WHERE ra.member_id = $1`
		args = append(args, *memberID)
	}
	query += ` ORDER BY ra.created_at DESC, ra.id`

	assignments := []models.RoutineAssignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, translateError(ctx, err, "list assignments")
	}
	return assignments, nil
}

// Create deactivates the member's current assignment and inserts the new one atomically
func (r *AssignmentRepository) Create(ctx context.Context, a *models.RoutineAssignment) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	return r.withTx(ctx, "create assignment", func(tx *sqlx.Tx) error {
		if _, err := lockMember(ctx, tx, a.MemberID); err != nil {
			return err
		}

		deactivate := `UPDATE routine_assignments SET is_active = FALSE WHERE member_id = $1 AND is_active`
		if _, err := tx.ExecContext(ctx, deactivate, a.MemberID); err != nil {
			return translateError(ctx, err, "deactivate previous assignment")
		}

		query := `
			INSERT INTO routine_assignments (id, member_id, routine_id, assigned_by, start_date, end_date, is_active, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			a.ID, a.MemberID, a.RoutineID, a.AssignedBy, a.StartDate, a.EndDate, a.IsActive, a.Notes,
		).Scan(&a.CreatedAt)
		if err != nil {
			return translateError(ctx, err, "create assignment")
		}
		return nil
	})
}

// DeactivateExpired turns off active assignments whose end date is before today
func (r *AssignmentRepository) DeactivateExpired(ctx context.Context, today models.Date) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE routine_assignments SET is_active = FALSE WHERE is_active AND end_date IS NOT NULL AND end_date < $1`, today)
	if err != nil {
		return 0, translateError(ctx, err, "deactivate expired assignments")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError(ctx, err, "deactivate expired assignments")
	}
	return rows, nil
}
