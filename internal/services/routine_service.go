package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// RoutineService manages routine templates and their assignment to members
type RoutineService struct {
	gateway
	routines    RoutineStore
	assignments AssignmentStore
}

// NewRoutineService creates a new routine service
func NewRoutineService(deps Deps, routines RoutineStore, assignments AssignmentStore) *RoutineService {
	return &RoutineService{
		gateway:     newGateway(deps),
		routines:    routines,
		assignments: assignments,
	}
}

// List returns every routine with its ordered exercises
func (s *RoutineService) List(ctx context.Context, identity access.Identity) ([]models.RoutineTemplate, error) {
	if _, err := s.authorize(identity, access.ResourceRoutines, access.ActionRead); err != nil {
		return nil, err
	}

	routines, err := s.routines.List(ctx)
	if err != nil {
		return nil, s.fail("list routines", "routine", "", err)
	}
	return routines, nil
}

// Get returns one routine with its exercises
func (s *RoutineService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*models.RoutineTemplate, error) {
	if _, err := s.authorize(identity, access.ResourceRoutines, access.ActionRead); err != nil {
		return nil, err
	}

	routine, err := s.routines.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get routine", "routine", id.String(), err)
	}
	return routine, nil
}

// Create stores a routine and its exercises atomically, numbering exercises from 0
func (s *RoutineService) Create(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.RoutineTemplate, error) {
	if _, err := s.authorize(identity, access.ResourceRoutines, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateRoutineRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	createdBy := identity.SubjectID
	routine := &models.RoutineTemplate{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Level:       models.RoutineLevel(req.Level),
		Category:    req.Category,
		Duration:    req.Duration,
		DaysPerWeek: req.DaysPerWeek,
		CreatedBy:   &createdBy,
		IsActive:    true,
		Exercises:   make([]models.ExerciseTemplate, 0, len(req.Exercises)),
	}
	for i, exercise := range req.Exercises {
		routine.Exercises = append(routine.Exercises, exercise.ToExercise(routine.ID, i))
	}

	if err := s.routines.Create(ctx, routine); err != nil {
		return nil, s.fail("create routine", "routine", "", err)
	}

	s.logger.WithFields(logrus.Fields{
		"routine_id": routine.ID,
		"exercises":  len(routine.Exercises),
		"created_by": identity.SubjectID,
	}).Info("Routine created")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditRoutineCreated,
		EntityType: "routine",
		EntityID:   routine.ID.String(),
	})

	return routine, nil
}

// AppendExercise adds an exercise after the routine's last one
func (s *RoutineService) AppendExercise(ctx context.Context, identity access.Identity, routineID uuid.UUID, raw map[string]interface{}) (*models.ExerciseTemplate, error) {
	if _, err := s.authorize(identity, access.ResourceRoutines, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateExerciseRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	exercise := req.ToExercise(routineID, 0)
	if err := s.routines.AppendExercise(ctx, &exercise); err != nil {
		return nil, s.fail("append exercise", "routine", routineID.String(), err)
	}

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditExerciseAppended,
		EntityType: "routine",
		EntityID:   routineID.String(),
		Details:    map[string]interface{}{"exercise_id": exercise.ID, "order_index": exercise.OrderIndex},
	})

	return &exercise, nil
}

// ListAssignments returns assignments, optionally for one member
func (s *RoutineService) ListAssignments(ctx context.Context, identity access.Identity, query map[string]interface{}) ([]models.RoutineAssignment, error) {
	if _, err := s.authorize(identity, access.ResourceAssignments, access.ActionRead); err != nil {
		return nil, err
	}

	var q models.MemberQuery
	if err := s.decode(query, &q); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx, models.UUIDPtr(q.MemberID))
	if err != nil {
		return nil, s.fail("list assignments", "assignment", "", err)
	}

	today := s.clock.Current()
	for i := range assignments {
		assignments[i].Derive(today)
	}
	return assignments, nil
}

// Assign gives a member a routine. The member's previous active assignment is
// deactivated in the same transaction.
func (s *RoutineService) Assign(ctx context.Context, identity access.Identity, raw map[string]interface{}) (*models.RoutineAssignment, error) {
	if _, err := s.authorize(identity, access.ResourceAssignments, access.ActionCreate); err != nil {
		return nil, err
	}

	var req models.CreateAssignmentRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	assignedBy := identity.SubjectID
	assignment := &models.RoutineAssignment{
		ID:         uuid.New(),
		MemberID:   uuid.MustParse(req.MemberID),
		RoutineID:  uuid.MustParse(req.RoutineID),
		AssignedBy: &assignedBy,
		StartDate:  today,
		EndDate:    models.DatePtr(req.EndDate),
		IsActive:   true,
		Notes:      req.Notes,
	}
	if start := models.DatePtr(req.StartDate); start != nil {
		assignment.StartDate = *start
	}

	if assignment.EndDate != nil {
		if assignment.EndDate.Time.Before(today.Time) {
			return nil, validator.NewValidationError(validator.FieldError{
				Field:   "end_date",
				Reason:  validator.ReasonOutOfRange,
				Message: "must not be in the past",
			})
		}
		if assignment.EndDate.Time.Before(assignment.StartDate.Time) {
			return nil, validator.NewValidationError(validator.FieldError{
				Field:   "end_date",
				Reason:  validator.ReasonOutOfRange,
				Message: "must not be before start_date",
			})
		}
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, s.fail("create assignment", "routine", req.RoutineID, err)
	}

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditAssignmentCreated,
		EntityType: "routine_assignment",
		EntityID:   assignment.ID.String(),
		Details:    map[string]interface{}{"member_id": assignment.MemberID, "routine_id": assignment.RoutineID},
	})

	return assignment, nil
}
