package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuditService handles audit logging for security and business events
type AuditService struct {
	store   AuditStore
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service only logs.
func NewAuditService(store AuditStore, logger *logrus.Logger, enabled bool) *AuditService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditService{
		store:   store,
		logger:  logger,
		enabled: enabled,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	Actor      *access.Identity       // nil for pre-authentication events
	Action     models.AuditAction
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// Record stores the event. Failures are logged and never returned, so auditing
// cannot fail the operation being audited.
func (s *AuditService) Record(ctx context.Context, event AuditEvent) {
	client := ClientInfoFrom(ctx)

	details := make(map[string]interface{}, len(event.Details)+1)
	for k, v := range event.Details {
		details[k] = v
	}
	if client.UserAgent != "" {
		details["device"] = utils.ParseUserAgent(client.UserAgent)
	}

	fields := logrus.Fields{
		"action":      event.Action,
		"entity_type": event.EntityType,
		"entity_id":   event.EntityID,
		"ip":          client.IPAddress,
	}
	if event.Actor != nil {
		fields["actor_id"] = event.Actor.SubjectID
		fields["actor_role"] = event.Actor.Role
	}

	if !s.enabled || s.store == nil {
		s.logger.WithFields(fields).Info("Audit event")
		return
	}

	entry := &models.AuditLog{
		ID:         uuid.New(),
		Action:     event.Action,
		EntityType: event.EntityType,
	}
	if event.Actor != nil {
		actorID := event.Actor.SubjectID
		role := string(event.Actor.Role)
		entry.ActorID = &actorID
		entry.ActorRole = &role
	}
	if event.EntityID != "" {
		entityID := event.EntityID
		entry.EntityID = &entityID
	}
	if client.IPAddress != "" {
		ip := client.IPAddress
		entry.IPAddress = &ip
	}

	encoded, err := json.Marshal(details)
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Error("AUDIT ERROR: failed to encode details")
		return
	}
	entry.Details = encoded

	// The audit row is written even when the request was cancelled after committing.
	if err := s.store.Insert(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.WithFields(fields).WithError(err).Error("AUDIT ERROR: failed to store audit event")
	}
}
