package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

// SessionRepository handles server-side login sessions
type SessionRepository struct {
	store
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB, queryTimeout time.Duration) *SessionRepository {
	return &SessionRepository{store: newStore(db, queryTimeout)}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO sessions (id, subject_id, subject_type, role, expires_at, ip_address, user_agent, device_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.SubjectID, s.SubjectType, s.Role, s.ExpiresAt, s.IPAddress, s.UserAgent, s.DeviceType,
	).Scan(&s.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "create session")
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		SELECT id, subject_id, subject_type, role, expires_at, revoked_at, ip_address, user_agent, device_type, created_at
		FROM sessions
		WHERE id = $1
	`

	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, translateError(ctx, err, "get session")
	}
	return &session, nil
}

// Revoke ends a session. Revoking an already revoked session is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return translateError(ctx, err, "revoke session")
	}
	return nil
}

// RevokeAllForSubject ends every open session of a staff user or member
func (r *SessionRepository) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE subject_id = $1 AND revoked_at IS NULL`, subjectID)
	if err != nil {
		return 0, translateError(ctx, err, "revoke subject sessions")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError(ctx, err, "revoke subject sessions")
	}
	return rows, nil
}

// DeleteExpired removes sessions that expired before cutoff
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, translateError(ctx, err, "delete expired sessions")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError(ctx, err, "delete expired sessions")
	}
	return rows, nil
}
