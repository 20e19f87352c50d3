package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/internal/storage"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// memberNumberAttempts bounds how many generated member numbers are tried before giving up
const memberNumberAttempts = 5

// MemberService handles member business logic
type MemberService struct {
	gateway
	members    MemberStore
	sessions   SessionStore
	photos     PhotoUploader
	bcryptCost int
}

// NewMemberService creates a new member service. photos may be nil when storage is disabled.
func NewMemberService(deps Deps, members MemberStore, sessions SessionStore, photos PhotoUploader, bcryptCost int) *MemberService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &MemberService{
		gateway:    newGateway(deps),
		members:    members,
		sessions:   sessions,
		photos:     photos,
		bcryptCost: bcryptCost,
	}
}

// List returns the members visible to identity, newest first
func (s *MemberService) List(ctx context.Context, identity access.Identity) ([]models.Member, error) {
	decision, err := s.authorize(identity, access.ResourceMembers, access.ActionRead)
	if err != nil {
		return nil, err
	}

	if decision.Scope == access.ScopeSelf {
		member, err := s.Get(ctx, identity, *identity.MemberID)
		if err != nil {
			return nil, err
		}
		return []models.Member{*member}, nil
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return nil, s.fail("list members", "member", "", err)
	}

	today := s.clock.Current()
	for i := range members {
		members[i].Derive(today)
	}
	return members, nil
}

// Get returns one member
func (s *MemberService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*models.Member, error) {
	if _, err := s.authorizeMember(identity, access.ResourceMembers, access.ActionRead, id); err != nil {
		return nil, err
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get member", "member", id.String(), err)
	}

	member.Derive(s.clock.Current())
	return member, nil
}

// Create enrolls a new member
func (s *MemberService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.Member, error) {
	if _, err := s.authorize(identity, access.ResourceMembers, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateMemberRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	member := &models.Member{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            strings.ToLower(req.Email),
		Phone:            req.Phone,
		BirthDate:        models.DatePtr(req.BirthDate),
		Gender:           req.Gender,
		Address:          req.Address,
		Plan:             billing.PlanMonthly,
		Status:           models.MemberStatusActive,
		StartDate:        today,
		NextPaymentDate:  models.DatePtr(req.NextPaymentDate),
		Weight:           req.Weight,
		Height:           req.Height,
		EmergencyContact: req.EmergencyContact,
		Notes:            req.Notes,
		MedicalNotes:     req.MedicalNotes,
	}
	if req.Plan != nil {
		member.Plan = *req.Plan
	}
	if req.Status != nil {
		member.Status = models.MemberStatus(*req.Status)
	}
	if start := models.DatePtr(req.StartDate); start != nil {
		member.StartDate = *start
	}

	bmi, err := billing.ComputeBMI(member.Weight, member.Height)
	if err != nil {
		return nil, err
	}
	member.BMI = bmi

	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		member.PasswordHash = &hash
	}

	if req.MemberNumber != nil {
		member.MemberNumber = *req.MemberNumber
	} else {
		number, err := s.generateMemberNumber(ctx)
		if err != nil {
			return nil, err
		}
		member.MemberNumber = number
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, s.fail("create member", "member", "", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id":     member.ID,
		"member_number": member.MemberNumber,
		"created_by":    identity.SubjectID,
	}).Info("Member created")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditMemberCreated,
		EntityType: "member",
		EntityID:   member.ID.String(),
		Details:    map[string]interface{}{"member_number": member.MemberNumber, "plan": member.Plan},
	})

	member.Derive(s.clock.Current())
	return member, nil
}

// generateMemberNumber derives GYM-NNNNNN from the clock and probes for a free value
func (s *MemberService) generateMemberNumber(ctx context.Context) (string, error) {
	base := s.clock.Current().UnixMilli()
	for attempt := int64(0); attempt < memberNumberAttempts; attempt++ {
		candidate := fmt.Sprintf("GYM-%06d", (base+attempt)%1000000)
		exists, err := s.members.MemberNumberExists(ctx, candidate)
		if err != nil {
			return "", s.fail("check member number", "member", "", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &ConflictError{Field: "member_number", Message: "could not allocate a unique member number"}
}

// Update applies a partial update. Members may only change their own contact and
// body fields; next_payment_date only moves through payments.
func (s *MemberService) Update(ctx context.Context, identity access.Identity, id uuid.UUID, raw map[string]interface{}) (*models.Member, error) {
	if _, err := s.authorizeMember(identity, access.ResourceMembers, access.ActionUpdate, id); err != nil {
		return nil, err
	}

	if identity.IsMember() {
		if forbidden := forbiddenSelfFields(raw); len(forbidden) > 0 {
			return nil, &AuthorizationError{
				Resource: access.ResourceMembers,
				Action:   access.ActionUpdate,
				Reason:   "members cannot change " + strings.Join(forbidden, ", "),
			}
		}
	}

	var req models.UpdateMemberRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	var passwordHash *string
	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	var previousStatus models.MemberStatus
	member, err := s.members.Update(ctx, id, func(m *models.Member) error {
		previousStatus = m.Status
		if err := applyMemberUpdate(m, &req); err != nil {
			return err
		}
		if passwordHash != nil {
			m.PasswordHash = passwordHash
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("update member", "member", id.String(), err)
	}

	if member.Status.LocksOut() && !previousStatus.LocksOut() {
		if err := s.revokeSessions(ctx, id, string(member.Status)); err != nil {
			return nil, err
		}
	}

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditMemberUpdated,
		EntityType: "member",
		EntityID:   id.String(),
		Details:    map[string]interface{}{"fields": sortedKeys(validator.Normalize(raw))},
	})

	member.Derive(s.clock.Current())
	return member, nil
}

// applyMemberUpdate copies the fields present in req onto m and recomputes BMI when
// weight or height changed
func applyMemberUpdate(m *models.Member, req *models.UpdateMemberRequest) error {
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Email != nil {
		m.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		m.Phone = req.Phone
	}
	if req.BirthDate != nil {
		m.BirthDate = models.DatePtr(req.BirthDate)
	}
	if req.Gender != nil {
		m.Gender = req.Gender
	}
	if req.Address != nil {
		m.Address = req.Address
	}
	if req.Plan != nil {
		m.Plan = *req.Plan
	}
	if req.Status != nil {
		m.Status = models.MemberStatus(*req.Status)
	}
	if start := models.DatePtr(req.StartDate); start != nil {
		m.StartDate = *start
	}
	if req.EmergencyContact != nil {
		m.EmergencyContact = req.EmergencyContact
	}
	if req.Notes != nil {
		m.Notes = req.Notes
	}
	if req.MedicalNotes != nil {
		m.MedicalNotes = req.MedicalNotes
	}

	if req.Weight == nil && req.Height == nil {
		return nil
	}
	if req.Weight != nil {
		m.Weight = req.Weight
	}
	if req.Height != nil {
		m.Height = req.Height
	}
	bmi, err := billing.ComputeBMI(m.Weight, m.Height)
	if err != nil {
		return err
	}
	m.BMI = bmi
	return nil
}

// revokeSessions signs the member out everywhere
func (s *MemberService) revokeSessions(ctx context.Context, id uuid.UUID, reason string) error {
	revoked, err := s.sessions.RevokeAllForSubject(ctx, id)
	if err != nil {
		return s.fail("revoke member sessions", "member", id.String(), err)
	}
	s.logger.WithFields(logrus.Fields{
		"member_id": id,
		"reason":    reason,
		"revoked":   revoked,
	}).Info("Revoked member sessions")
	return nil
}

// forbiddenSelfFields lists the non-blank keys of raw a member may not edit
func forbiddenSelfFields(raw map[string]interface{}) []string {
	var forbidden []string
	for key := range validator.Normalize(raw) {
		if !models.MemberSelfEditableFields[key] {
			forbidden = append(forbidden, key)
		}
	}
	sort.Strings(forbidden)
	return forbidden
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "password" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Delete removes a member and signs them out. Their payments are kept.
func (s *MemberService) Delete(ctx context.Context, identity access.Identity, id uuid.UUID) error {
	if _, err := s.authorize(identity, access.ResourceMembers, access.ActionDelete); err != nil {
		return err
	}

	if err := s.members.Delete(ctx, id); err != nil {
		return s.fail("delete member", "member", id.String(), err)
	}
	if err := s.revokeSessions(ctx, id, "deleted"); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id":  id,
		"deleted_by": identity.SubjectID,
	}).Info("Member deleted")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditMemberDeleted,
		EntityType: "member",
		EntityID:   id.String(),
	})
	return nil
}

// UploadPhoto stores a resized copy of the image read from r as the member's photo
func (s *MemberService) UploadPhoto(ctx context.Context, identity access.Identity, id uuid.UUID, r io.Reader) (*models.Member, error) {
	if _, err := s.authorizeMember(identity, access.ResourceMembers, access.ActionUpdate, id); err != nil {
		return nil, err
	}

	if s.photos == nil {
		return nil, ErrStorageDisabled
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get member", "member", id.String(), err)
	}

	url, err := s.photos.UploadMemberPhoto(ctx, id, r)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, validator.NewValidationError(validator.FieldError{
				Field:   "photo",
				Reason:  validator.ReasonInvalid,
				Message: "must be a JPEG, PNG, GIF, BMP or TIFF image",
			})
		}
		return nil, storageFailure(s.logger, "upload member photo", "member", id.String(), err)
	}

	if err := s.members.UpdatePhoto(ctx, id, url); err != nil {
		return nil, s.fail("update member photo", "member", id.String(), err)
	}
	member.PhotoURL = &url

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditMemberPhoto,
		EntityType: "member",
		EntityID:   id.String(),
	})

	member.Derive(s.clock.Current())
	return member, nil
}

func (s *MemberService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
