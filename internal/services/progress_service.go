package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/sirupsen/logrus"
)

// ProgressService records body measurements and keeps the member's current values in step
type ProgressService struct {
	gateway
	progress ProgressStore
}

// NewProgressService creates a new progress service
func NewProgressService(deps Deps, progress ProgressStore) *ProgressService {
	return &ProgressService{
		gateway:  newGateway(deps),
		progress: progress,
	}
}

// ListByMember returns a member's measurements, most recent first
func (s *ProgressService) ListByMember(ctx context.Context, identity access.Identity, memberID uuid.UUID) ([]models.PhysicalProgress, error) {
	if _, err := s.authorizeMember(identity, access.ResourceProgress, access.ActionRead, memberID); err != nil {
		return nil, err
	}

	records, err := s.progress.ListByMember(ctx, memberID)
	if err != nil {
		return nil, s.fail("list physical progress", "member", memberID.String(), err)
	}
	return records, nil
}

// Create records a measurement. A new weight or height replaces the member's
// current value and the BMI of both is recomputed from the combined values.
func (s *ProgressService) Create(ctx context.Context, identity access.Identity, memberID uuid.UUID, raw map[string]interface{}) (*models.PhysicalProgress, error) {
	if _, err := s.authorizeMember(identity, access.ResourceProgress, access.ActionCreate, memberID); err != nil {
		return nil, err
	}

	var req models.CreateProgressRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	recordedBy := identity.SubjectID
	progress := &models.PhysicalProgress{
		ID:              uuid.New(),
		MemberID:        memberID,
		MeasurementDate: s.clock.Today(),
		Weight:          req.Weight,
		Height:          req.Height,
		BodyFat:         req.BodyFat,
		MuscleMass:      req.MuscleMass,
		Notes:           req.Notes,
		RecordedBy:      &recordedBy,
	}
	if date := models.DatePtr(req.MeasurementDate); date != nil {
		progress.MeasurementDate = *date
	}

	member, err := s.progress.Record(ctx, progress, func(m *models.Member) error {
		if progress.Weight != nil {
			m.Weight = progress.Weight
		}
		if progress.Height != nil {
			m.Height = progress.Height
		}
		bmi, err := billing.ComputeBMI(m.Weight, m.Height)
		if err != nil {
			return err
		}
		m.BMI = bmi
		progress.BMI = bmi
		return nil
	})
	if err != nil {
		return nil, s.fail("record physical progress", "member", memberID.String(), err)
	}

	s.logger.WithFields(logrus.Fields{
		"progress_id": progress.ID,
		"member_id":   memberID,
		"bmi":         member.BMI,
	}).Info("Physical progress recorded")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditProgressRecorded,
		EntityType: "physical_progress",
		EntityID:   progress.ID.String(),
		Details:    map[string]interface{}{"member_id": memberID},
	})

	return progress, nil
}
