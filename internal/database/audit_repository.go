package database

import (
	"context"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/models"
)

// AuditRepository appends audit log entries
type AuditRepository struct {
	store
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db DB, queryTimeout time.Duration) *AuditRepository {
	return &AuditRepository{store: newStore(db, queryTimeout)}
}

// Insert appends one entry
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		INSERT INTO audit_logs (id, actor_id, actor_role, action, entity_type, entity_id, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	var details interface{}
	if len(entry.Details) > 0 {
		details = []byte(entry.Details)
	}

	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.ActorID, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, details, entry.IPAddress,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return translateError(ctx, err, "insert audit log")
	}
	return nil
}
