package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const memberColumns = `id, member_number, name, email, phone, birth_date, gender, address, plan, status,
	start_date, next_payment_date, weight, height, bmi, emergency_contact, notes, medical_notes,
	photo_url, password_hash, created_at, updated_at`

// MemberRepository handles member database operations
type MemberRepository struct {
	store
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db DB, queryTimeout time.Duration) *MemberRepository {
	return &MemberRepository{store: newStore(db, queryTimeout)}
}

// List returns all members, newest first
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at DESC, id`

	members := []models.Member{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, translateError(ctx, err, "list members")
	}
	return members, nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, translateError(ctx, err, "get member")
	}
	return &member, nil
}

// GetByEmail retrieves a member by email, ignoring case
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1)`

	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, email); err != nil {
		return nil, translateError(ctx, err, "get member by email")
	}
	return &member, nil
}

// MemberNumberExists checks whether a member number is already taken
func (r *MemberRepository) MemberNumberExists(ctx context.Context, memberNumber string) (bool, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE member_number = $1)`
	if err := r.db.GetContext(ctx, &exists, query, memberNumber); err != nil {
		return false, translateError(ctx, err, "check member number")
	}
	return exists, nil
}

// Create inserts a new member and fills its timestamps
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO members (
			id, member_number, name, email, phone, birth_date, gender, address, plan, status,
			start_date, next_payment_date, weight, height, bmi, emergency_contact, notes,
			medical_notes, photo_url, password_hash
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		m.ID, m.MemberNumber, m.Name, m.Email, m.Phone, m.BirthDate, m.Gender, m.Address, m.Plan, m.Status,
		m.StartDate, m.NextPaymentDate, m.Weight, m.Height, m.BMI, m.EmergencyContact, m.Notes,
		m.MedicalNotes, m.PhotoURL, m.PasswordHash,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translateError(ctx, err, "create member")
	}
	return nil
}

// Update locks the member, lets apply change it and writes every mutable column back
// in one transaction. next_payment_date is owned by payments and left alone.
func (r *MemberRepository) Update(ctx context.Context, id uuid.UUID, apply func(m *models.Member) error) (*models.Member, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		UPDATE members
		SET name = $2, email = $3, phone = $4, birth_date = $5, gender = $6, address = $7,
		    plan = $8, status = $9, start_date = $10, weight = $11, height = $12, bmi = $13,
		    emergency_contact = $14, notes = $15, medical_notes = $16, password_hash = $17,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	var member *models.Member
	err := r.withTx(ctx, "update member", func(tx *sqlx.Tx) error {
		m, err := lockMember(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := apply(m); err != nil {
			return err
		}

		err = tx.QueryRowxContext(ctx, query,
			m.ID, m.Name, m.Email, m.Phone, m.BirthDate, m.Gender, m.Address,
			m.Plan, m.Status, m.StartDate, m.Weight, m.Height, m.BMI,
			m.EmergencyContact, m.Notes, m.MedicalNotes, m.PasswordHash,
		).Scan(&m.UpdatedAt)
		if err != nil {
			return translateError(ctx, err, "update member")
		}

		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// UpdatePhoto stores the public URL of the member's photo
func (r *MemberRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET photo_url = $2, updated_at = NOW() WHERE id = $1`, id, photoURL)
	if err != nil {
		return translateError(ctx, err, "update member photo")
	}
	return expectAffected(ctx, result, "update member photo")
}

// Delete removes a member. Attendance, progress, workouts and assignments go with it;
// payments keep their copy of the member's name and number.
func (r *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return translateError(ctx, err, "delete member")
	}
	return expectAffected(ctx, result, "delete member")
}

// lockMember loads a member row and holds its lock until the transaction ends
func lockMember(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	var member models.Member
	if err := tx.GetContext(ctx, &member, query, id); err != nil {
		return nil, translateError(ctx, err, "lock member")
	}
	return &member, nil
}

// saveMemberBilling writes the payment-owned columns of a locked member
func saveMemberBilling(ctx context.Context, tx *sqlx.Tx, m *models.Member) error {
	query := `
		UPDATE members
		SET next_payment_date = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRowxContext(ctx, query, m.ID, m.NextPaymentDate, m.Status).Scan(&m.UpdatedAt); err != nil {
		return translateError(ctx, err, "update member billing")
	}
	return nil
}

// saveMemberMeasurements writes weight, height and BMI of a locked member
func saveMemberMeasurements(ctx context.Context, tx *sqlx.Tx, m *models.Member) error {
	query := `
		UPDATE members
		SET weight = $2, height = $3, bmi = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRowxContext(ctx, query, m.ID, m.Weight, m.Height, m.BMI).Scan(&m.UpdatedAt); err != nil {
		return translateError(ctx, err, "update member measurements")
	}
	return nil
}
