package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// StaffService handles staff user management
type StaffService struct {
	gateway
	staff      StaffStore
	sessions   SessionStore
	phones     *validator.PhoneValidator
	bcryptCost int
}

// NewStaffService creates a new staff service
func NewStaffService(deps Deps, staff StaffStore, sessions SessionStore, bcryptCost int) *StaffService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &StaffService{
		gateway:    newGateway(deps),
		staff:      staff,
		sessions:   sessions,
		phones:     validator.NewPhoneValidator(),
		bcryptCost: bcryptCost,
	}
}

// List returns every staff user ordered by name
func (s *StaffService) List(ctx context.Context, identity access.Identity) ([]models.StaffUser, error) {
	if _, err := s.authorize(identity, access.ResourceStaff, access.ActionRead); err != nil {
		return nil, err
	}

	staff, err := s.staff.List(ctx)
	if err != nil {
		return nil, s.fail("list staff", "staff user", "", err)
	}
	return staff, nil
}

// Get returns one staff user
func (s *StaffService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*models.StaffUser, error) {
	if _, err := s.authorize(identity, access.ResourceStaff, access.ActionRead); err != nil {
		return nil, err
	}

	user, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get staff user", "staff user", id.String(), err)
	}
	return user, nil
}

// Create adds a staff user with a bcrypt-hashed password
func (s *StaffService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.StaffUser, error) {
	if _, err := s.authorize(identity, access.ResourceStaff, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateStaffRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.StaffUser{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        s.phones.Sanitize(req.Phone),
		Role:         models.StaffRole(req.Role),
		Shift:        models.DefaultShift,
		Status:       models.StaffStatusActive,
		HireDate:     models.DatePtr(req.HireDate),
		PasswordHash: string(hash),
	}
	if req.Shift != nil {
		user.Shift = *req.Shift
	}
	if req.Status != nil {
		user.Status = models.StaffStatus(*req.Status)
	}

	if err := s.staff.Create(ctx, user); err != nil {
		return nil, s.fail("create staff user", "staff user", "", err)
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id":   user.ID,
		"role":       user.Role,
		"created_by": identity.SubjectID,
	}).Info("Staff user created")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditStaffCreated,
		EntityType: "staff_user",
		EntityID:   user.ID.String(),
		Details:    map[string]interface{}{"role": user.Role},
	})

	return user, nil
}

// Update applies a partial update. Nobody changes their own role or status.
// Deactivating a user ends their open sessions.
func (s *StaffService) Update(ctx context.Context, identity access.Identity, id uuid.UUID, raw map[string]interface{}) (*models.StaffUser, error) {
	if _, err := s.authorize(identity, access.ResourceStaff, access.ActionUpdate); err != nil {
		return nil, err
	}

	if id == identity.SubjectID {
		normalized := validator.Normalize(raw)
		_, hasRole := normalized["role"]
		_, hasStatus := normalized["status"]
		if hasRole || hasStatus {
			return nil, &AuthorizationError{
				Resource: access.ResourceStaff,
				Action:   access.ActionUpdate,
				Reason:   "staff users cannot change their own role or status",
			}
		}
	}

	var req models.UpdateStaffRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	user, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get staff user", "staff user", id.String(), err)
	}
	previousStatus := user.Status

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = s.phones.Sanitize(*req.Phone)
	}
	if req.Role != nil {
		user.Role = models.StaffRole(*req.Role)
	}
	if req.Shift != nil {
		user.Shift = *req.Shift
	}
	if req.Status != nil {
		user.Status = models.StaffStatus(*req.Status)
	}
	if req.HireDate != nil {
		user.HireDate = models.DatePtr(req.HireDate)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.staff.Update(ctx, user); err != nil {
		return nil, s.fail("update staff user", "staff user", id.String(), err)
	}

	if user.Status != models.StaffStatusActive && previousStatus == models.StaffStatusActive {
		revoked, err := s.sessions.RevokeAllForSubject(ctx, user.ID)
		if err != nil {
			return nil, s.fail("revoke staff sessions", "staff user", id.String(), err)
		}
		s.logger.WithFields(logrus.Fields{
			"staff_id": user.ID,
			"status":   user.Status,
			"revoked":  revoked,
		}).Info("Revoked sessions of deactivated staff user")
	}

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditStaffUpdated,
		EntityType: "staff_user",
		EntityID:   id.String(),
		Details:    map[string]interface{}{"fields": sortedKeys(validator.Normalize(raw))},
	})

	return user, nil
}
