package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
)

// WorkoutService logs training sessions
type WorkoutService struct {
	gateway
	sessions WorkoutSessionStore
}

// NewWorkoutService creates a new workout service
func NewWorkoutService(deps Deps, sessions WorkoutSessionStore) *WorkoutService {
	return &WorkoutService{
		gateway:  newGateway(deps),
		sessions: sessions,
	}
}

// List returns logged sessions, newest first. Members only see their own.
func (s *WorkoutService) List(ctx context.Context, identity access.Identity, query map[string]interface{}) ([]models.WorkoutSession, error) {
	decision, err := s.authorize(identity, access.ResourceWorkoutSessions, access.ActionRead)
	if err != nil {
		return nil, err
	}

	var q models.MemberQuery
	if err := s.decode(query, &q); err != nil {
		return nil, err
	}

	memberID := models.UUIDPtr(q.MemberID)
	if decision.Scope == access.ScopeSelf {
		if memberID != nil && *memberID != *identity.MemberID {
			return nil, &AuthorizationError{
				Resource: access.ResourceWorkoutSessions,
				Action:   access.ActionRead,
				Reason:   "members may only access their own records",
			}
		}
		memberID = identity.MemberID
	}

	sessions, err := s.sessions.List(ctx, memberID)
	if err != nil {
		return nil, s.fail("list workout sessions", "workout session", "", err)
	}
	return sessions, nil
}

// Create logs a session. Members log for themselves; staff must name the member.
func (s *WorkoutService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.WorkoutSession, error) {
	decision, err := s.authorize(identity, access.ResourceWorkoutSessions, access.ActionCreate)
	if err != nil {
		return nil, err
	}

	var req models.CreateWorkoutSessionRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	memberID := models.UUIDPtr(req.MemberID)
	switch {
	case decision.Scope == access.ScopeSelf:
		if memberID != nil && *memberID != *identity.MemberID {
			return nil, &AuthorizationError{
				Resource: access.ResourceWorkoutSessions,
				Action:   access.ActionCreate,
				Reason:   "members may only log their own sessions",
			}
		}
		memberID = identity.MemberID
	case memberID == nil:
		return nil, validator.NewValidationError(validator.FieldError{
			Field:   "member_id",
			Reason:  validator.ReasonRequired,
			Message: "is required",
		})
	}

	session := &models.WorkoutSession{
		ID:          uuid.New(),
		MemberID:    *memberID,
		RoutineID:   models.UUIDPtr(req.RoutineID),
		Date:        s.clock.Today(),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsCompleted: req.IsCompleted,
		Notes:       req.Notes,
	}
	if date := models.DatePtr(req.Date); date != nil {
		session.Date = *date
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.fail("create workout session", "member", session.MemberID.String(), err)
	}
	return session, nil
}
