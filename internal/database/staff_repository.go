package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

const staffColumns = `id, name, email, phone, role, shift, status, hire_date, password_hash,
	last_login_at, created_at, updated_at`

// StaffRepository handles staff user database operations
type StaffRepository struct {
	store
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db DB, queryTimeout time.Duration) *StaffRepository {
	return &StaffRepository{store: newStore(db, queryTimeout)}
}

// List returns all staff users ordered by name
func (r *StaffRepository) List(ctx context.Context) ([]models.StaffUser, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	staff := []models.StaffUser{}
	query := `SELECT ` + staffColumns + ` FROM staff_users ORDER BY name, id`
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, translateError(ctx, err, "list staff")
	}
	return staff, nil
}

// GetByID retrieves a staff user by ID
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var user models.StaffUser
	query := `SELECT ` + staffColumns + ` FROM staff_users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translateError(ctx, err, "get staff user")
	}
	return &user, nil
}

// GetByEmail retrieves a staff user by email, ignoring case
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var user models.StaffUser
	query := `SELECT ` + staffColumns + ` FROM staff_users WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, translateError(ctx, err, "get staff user by email")
	}
	return &user, nil
}

// Create inserts a new staff user
func (r *StaffRepository) Create(ctx context.Context, u *models.StaffUser) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO staff_users (id, name, email, phone, role, shift, status, hire_date, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.Shift, u.Status, u.HireDate, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return translateError(ctx, err, "create staff user")
	}
	return nil
}

// Update writes every mutable column of u
func (r *StaffRepository) Update(ctx context.Context, u *models.StaffUser) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		UPDATE staff_users
		SET name = $2, email = $3, phone = $4, role = $5, shift = $6, status = $7,
		    hire_date = $8, password_hash = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.Shift, u.Status, u.HireDate, u.PasswordHash,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return translateError(ctx, err, "update staff user")
	}
	return nil
}

// UpdateLastLogin stamps the last successful login
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `UPDATE staff_users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return translateError(ctx, err, "update last login")
	}
	return expectAffected(ctx, result, "update last login")
}
