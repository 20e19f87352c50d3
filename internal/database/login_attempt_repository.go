package database

import (
	"context"
	"time"
)

// Identifier types tracked for login throttling
const (
	IdentifierEmail = "email"
	IdentifierIP    = "ip"
)

// LoginAttemptRepository records failed logins for throttling
type LoginAttemptRepository struct {
	store
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db DB, queryTimeout time.Duration) *LoginAttemptRepository {
	return &LoginAttemptRepository{store: newStore(db, queryTimeout)}
}

// CountSince returns how many failures were recorded for identifier after since,
// together with the time of the most recent one
func (r *LoginAttemptRepository) CountSince(ctx context.Context, identifier, identifierType string, since time.Time) (int, time.Time, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var last time.Time
	if err := r.db.QueryRowxContext(ctx, query, identifier, identifierType, since).Scan(&count, &last); err != nil {
		return 0, time.Time{}, translateError(ctx, err, "count login attempts")
	}
	return count, last, nil
}

// Record stores one failed attempt
func (r *LoginAttemptRepository) Record(ctx context.Context, identifier, identifierType string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_attempts (identifier, identifier_type) VALUES ($1, $2)`, identifier, identifierType)
	if err != nil {
		return translateError(ctx, err, "record login attempt")
	}
	return nil
}

// Clear forgets the failures recorded for identifier
func (r *LoginAttemptRepository) Clear(ctx context.Context, identifier, identifierType string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = $2`, identifier, identifierType)
	if err != nil {
		return translateError(ctx, err, "clear login attempts")
	}
	return nil
}

// DeleteBefore removes attempts older than cutoff
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, translateError(ctx, err, "delete login attempts")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError(ctx, err, "delete login attempts")
	}
	return rows, nil
}
