package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles physical progress database operations
type ProgressRepository struct {
	store
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db DB, queryTimeout time.Duration) *ProgressRepository {
	return &ProgressRepository{store: newStore(db, queryTimeout)}
}

// ListByMember returns a member's measurements, most recent first
func (r *ProgressRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.PhysicalProgress, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		SELECT id, member_id, measurement_date, weight, height, bmi, body_fat, muscle_mass, notes, recorded_by, created_at
		FROM physical_progress
		WHERE member_id = $1
		ORDER BY measurement_date DESC, created_at DESC, id
	`

	records := []models.PhysicalProgress{}
	if err := r.db.SelectContext(ctx, &records, query, memberID); err != nil {
		return nil, translateError(ctx, err, "list physical progress")
	}
	return records, nil
}

// Record inserts a measurement and refreshes the member's measurements in one transaction.
// apply receives the locked member and copies the new values onto it.
func (r *ProgressRepository) Record(ctx context.Context, p *models.PhysicalProgress, apply func(m *models.Member) error) (*models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var member *models.Member
	err := r.withTx(ctx, "record physical progress", func(tx *sqlx.Tx) error {
		locked, err := lockMember(ctx, tx, p.MemberID)
		if err != nil {
			return err
		}

		if err := apply(locked); err != nil {
			return err
		}

		query := `
			INSERT INTO physical_progress (id, member_id, measurement_date, weight, height, bmi, body_fat, muscle_mass, notes, recorded_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`
		err = tx.QueryRowxContext(ctx, query,
			p.ID, p.MemberID, p.MeasurementDate, p.Weight, p.Height, p.BMI, p.BodyFat, p.MuscleMass, p.Notes, p.RecordedBy,
		).Scan(&p.CreatedAt)
		if err != nil {
			return translateError(ctx, err, "create physical progress")
		}

		if err := saveMemberMeasurements(ctx, tx, locked); err != nil {
			return err
		}

		member = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}
