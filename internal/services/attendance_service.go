package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

const clockLayout = "15:04:05"

// AttendanceService registers check-ins and check-outs
type AttendanceService struct {
	gateway
	attendance AttendanceStore
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(deps Deps, attendance AttendanceStore) *AttendanceService {
	return &AttendanceService{
		gateway:    newGateway(deps),
		attendance: attendance,
	}
}

// List returns attendance, latest first. Trainers only see members they have an
// active assignment for.
func (s *AttendanceService) List(ctx context.Context, identity access.Identity, query map[string]interface{}) ([]models.Attendance, error) {
	decision, err := s.authorize(identity, access.ResourceAttendance, access.ActionRead)
	if err != nil {
		return nil, err
	}

	var q models.AttendanceQuery
	if err := s.decode(query, &q); err != nil {
		return nil, err
	}

	filter := models.AttendanceFilter{
		Date:     models.DatePtr(q.Date),
		MemberID: models.UUIDPtr(q.MemberID),
	}
	if decision.Scope == access.ScopeAssigned {
		trainerID := identity.SubjectID
		filter.AssignedBy = &trainerID
	}

	records, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list attendance", "attendance", "", err)
	}
	return records, nil
}

// Create registers an attendance event. Date and time default to now in the gym's timezone.
func (s *AttendanceService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.Attendance, error) {
	if _, err := s.authorize(identity, access.ResourceAttendance, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateAttendanceRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	now := s.clock.Current()
	record := &models.Attendance{
		ID:       uuid.New(),
		MemberID: uuid.MustParse(req.MemberID),
		Date:     models.NewDate(now),
		Time:     now.Format(clockLayout),
		Type:     models.AttendanceType(req.Type),
	}
	if date := models.DatePtr(req.Date); date != nil {
		record.Date = *date
	}
	if req.Time != nil {
		record.Time = *req.Time
	}
	if !identity.IsMember() {
		createdBy := identity.SubjectID
		record.CreatedBy = &createdBy
	}

	if err := s.attendance.Create(ctx, record); err != nil {
		return nil, s.fail("create attendance", "member", req.MemberID, err)
	}
	return record, nil
}
