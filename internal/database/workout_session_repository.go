package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

// WorkoutSessionRepository handles workout session database operations
type WorkoutSessionRepository struct {
	store
}

// NewWorkoutSessionRepository creates a new workout session repository
func NewWorkoutSessionRepository(db DB, queryTimeout time.Duration) *WorkoutSessionRepository {
	return &WorkoutSessionRepository{store: newStore(db, queryTimeout)}
}

// List returns workout sessions, optionally for one member, latest first
func (r *WorkoutSessionRepository) List(ctx context.Context, memberID *uuid.UUID) ([]models.WorkoutSession, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}
	if memberID != nil {
		args = append(args, *memberID)
		conditions = append(conditions, fmt.Sprintf("member_id = $%d", len(args)))
	}

	query := `
		SELECT id, member_id, routine_id, date, start_time::text AS start_time, end_time::text AS end_time,
		       is_completed, notes, created_at
		FROM workout_sessions
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date DESC, start_time DESC, id`

	sessions := []models.WorkoutSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, translateError(ctx, err, "list workout sessions")
	}
	return sessions, nil
}

// Create logs a workout session
func (r *WorkoutSessionRepository) Create(ctx context.Context, s *models.WorkoutSession) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO workout_sessions (id, member_id, routine_id, date, start_time, end_time, is_completed, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.MemberID, s.RoutineID, s.Date, s.StartTime, s.EndTime, s.IsCompleted, s.Notes,
	).Scan(&s.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "create workout session")
	}
	return nil
}
