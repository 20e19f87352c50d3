package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const routineColumns = `id, name, description, level, category, duration, days_per_week, created_by,
	is_active, created_at, updated_at`

const exerciseColumns = `id, routine_id, name, muscle_group, sets, reps, rest_time, weight, instructions,
	order_index, created_at`

// RoutineRepository handles routine and exercise template database operations
type RoutineRepository struct {
	store
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db DB, queryTimeout time.Duration) *RoutineRepository {
	return &RoutineRepository{store: newStore(db, queryTimeout)}
}

// List returns every routine with its exercises in order
func (r *RoutineRepository) List(ctx context.Context) ([]models.RoutineTemplate, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	routines := []models.RoutineTemplate{}
	query := `SELECT ` + routineColumns + ` FROM routine_templates ORDER BY created_at DESC, id`
	if err := r.db.SelectContext(ctx, &routines, query); err != nil {
		return nil, translateError(ctx, err, "list routines")
	}

	if len(routines) == 0 {
		return routines, nil
	}

	ids := make([]string, len(routines))
	for i, routine := range routines {
		ids[i] = routine.ID.String()
	}

	exercises := []models.ExerciseTemplate{}
	exerciseQuery := `SELECT ` + exerciseColumns + ` FROM exercise_templates
		WHERE routine_id = ANY($1::uuid[]) ORDER BY routine_id, order_index`
	if err := r.db.SelectContext(ctx, &exercises, exerciseQuery, pq.Array(ids)); err != nil {
		return nil, translateError(ctx, err, "list exercises")
	}

	byRoutine := make(map[uuid.UUID][]models.ExerciseTemplate, len(routines))
	for _, exercise := range exercises {
		byRoutine[exercise.RoutineID] = append(byRoutine[exercise.RoutineID], exercise)
	}
	for i := range routines {
		routines[i].Exercises = byRoutine[routines[i].ID]
		if routines[i].Exercises == nil {
			routines[i].Exercises = []models.ExerciseTemplate{}
		}
	}

	return routines, nil
}

// GetByID retrieves a routine with its exercises
func (r *RoutineRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RoutineTemplate, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var routine models.RoutineTemplate
	query := `SELECT ` + routineColumns + ` FROM routine_templates WHERE id = $1`
	if err := r.db.GetContext(ctx, &routine, query, id); err != nil {
		return nil, translateError(ctx, err, "get routine")
	}

	routine.Exercises = []models.ExerciseTemplate{}
	exerciseQuery := `SELECT ` + exerciseColumns + ` FROM exercise_templates WHERE routine_id = $1 ORDER BY order_index`
	if err := r.db.SelectContext(ctx, &routine.Exercises, exerciseQuery, id); err != nil {
		return nil, translateError(ctx, err, "list routine exercises")
	}

	return &routine, nil
}

// Create inserts a routine and all of its exercises in one transaction
func (r *RoutineRepository) Create(ctx context.Context, routine *models.RoutineTemplate) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	return r.withTx(ctx, "create routine", func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO routine_templates (id, name, description, level, category, duration, days_per_week, created_by, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			routine.ID, routine.Name, routine.Description, routine.Level, routine.Category,
			routine.Duration, routine.DaysPerWeek, routine.CreatedBy, routine.IsActive,
		).Scan(&routine.CreatedAt, &routine.UpdatedAt)
		if err != nil {
			return translateError(ctx, err, "create routine")
		}

		for i := range routine.Exercises {
			if err := insertExercise(ctx, tx, &routine.Exercises[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendExercise adds an exercise at the end of a routine. The routine row is locked
// so concurrent appends receive distinct, contiguous order indexes.
func (r *RoutineRepository) AppendExercise(ctx context.Context, exercise *models.ExerciseTemplate) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	return r.withTx(ctx, "append exercise", func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM routine_templates WHERE id = $1 FOR UPDATE`, exercise.RoutineID); err != nil {
			return translateError(ctx, err, "lock routine")
		}

		var next int
		nextQuery := `SELECT COALESCE(MAX(order_index) + 1, 0) FROM exercise_templates WHERE routine_id = $1`
		if err := tx.GetContext(ctx, &next, nextQuery, exercise.RoutineID); err != nil {
			return translateError(ctx, err, "get next exercise index")
		}
		exercise.OrderIndex = next

		return insertExercise(ctx, tx, exercise)
	})
}

func insertExercise(ctx context.Context, tx *sqlx.Tx, e *models.ExerciseTemplate) error {
	query := `
		INSERT INTO exercise_templates (id, routine_id, name, muscle_group, sets, reps, rest_time, weight, instructions, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := tx.QueryRowxContext(ctx, query,
		e.ID, e.RoutineID, e.Name, e.MuscleGroup, e.Sets, e.Reps, e.RestTime, e.Weight, e.Instructions, e.OrderIndex,
	).Scan(&e.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "create exercise")
	}
	return nil
}
