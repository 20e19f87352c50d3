package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
)

// RoutineLevel is the difficulty of a routine
type RoutineLevel string

const (
	RoutineLevelBeginner     RoutineLevel = "Beginner"
	RoutineLevelIntermediate RoutineLevel = "Intermediate"
	RoutineLevelAdvanced     RoutineLevel = "Advanced"
)

// RoutineTemplate is a reusable workout plan with ordered exercises
type RoutineTemplate struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	Name        string             `json:"name" db:"name"`
	Description *string            `json:"description,omitempty" db:"description"`
	Level       RoutineLevel       `json:"level" db:"level"`
	Category    string             `json:"category" db:"category"`
	Duration    string             `json:"duration" db:"duration"`
	DaysPerWeek int                `json:"days_per_week" db:"days_per_week"`
	CreatedBy   *uuid.UUID         `json:"created_by,omitempty" db:"created_by"`
	IsActive    bool               `json:"is_active" db:"is_active"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
	Exercises   []ExerciseTemplate `json:"exercises" db:"-"`
}

// ExerciseTemplate is one exercise inside a routine. OrderIndex is contiguous from 0.
type ExerciseTemplate struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RoutineID    uuid.UUID `json:"routine_id" db:"routine_id"`
	Name         string    `json:"name" db:"name"`
	MuscleGroup  string    `json:"muscle_group" db:"muscle_group"`
	Sets         int       `json:"sets" db:"sets"`
	Reps         string    `json:"reps" db:"reps"`
	RestTime     *string   `json:"rest_time,omitempty" db:"rest_time"`
	Weight       *string   `json:"weight,omitempty" db:"weight"`
	Instructions *string   `json:"instructions,omitempty" db:"instructions"`
	OrderIndex   int       `json:"order_index" db:"order_index"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CreateRoutineRequest is the validated payload for creating a routine with its exercises
type CreateRoutineRequest struct {
	Name        string                  `json:"name" validate:"required,min=3,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Level       string                  `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Category    string                  `json:"category" validate:"required,max=100"`
	Duration    string                  `json:"duration" validate:"required,max=50"`
	DaysPerWeek int                     `json:"days_per_week" validate:"required,min=1,max=7"`
	Exercises   []CreateExerciseRequest `json:"exercises" validate:"omitempty,dive"`
}

// CreateExerciseRequest is the validated payload for one exercise
type CreateExerciseRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=200"`
	MuscleGroup  string  `json:"muscle_group" validate:"required,oneof=Chest Back Legs Shoulders Arms Core Cardio FullBody"`
	Sets         int     `json:"sets" validate:"required,min=1,max=100"`
	Reps         string  `json:"reps" validate:"required,max=50"`
	RestTime     *string `json:"rest_time" validate:"omitempty,max=50"`
	Weight       *string `json:"weight" validate:"omitempty,max=50"`
	Instructions *string `json:"instructions" validate:"omitempty,max=1000"`
}

// ToExercise builds the exercise row for routineID at position index
func (r CreateExerciseRequest) ToExercise(routineID uuid.UUID, index int) ExerciseTemplate {
	return ExerciseTemplate{
		ID:           uuid.New(),
		RoutineID:    routineID,
		Name:         r.Name,
		MuscleGroup:  r.MuscleGroup,
		Sets:         r.Sets,
		Reps:         r.Reps,
		RestTime:     r.RestTime,
		Weight:       r.Weight,
		Instructions: r.Instructions,
		OrderIndex:   index,
	}
}

// RoutineAssignment links a member to a routine for a period
type RoutineAssignment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	MemberID    uuid.UUID  `json:"member_id" db:"member_id"`
	MemberName  *string    `json:"member_name,omitempty" db:"member_name"`
	RoutineID   uuid.UUID  `json:"routine_id" db:"routine_id"`
	RoutineName *string    `json:"routine_name,omitempty" db:"routine_name"`
	AssignedBy  *uuid.UUID `json:"assigned_by,omitempty" db:"assigned_by"`
	StartDate   Date       `json:"start_date" db:"start_date"`
	EndDate     *Date      `json:"end_date,omitempty" db:"end_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Derive reports an assignment whose end date has passed as inactive
func (a *RoutineAssignment) Derive(today time.Time) {
	if a.IsActive && a.EndDate != nil && a.EndDate.Time.Before(NewDate(today).Time) {
		a.IsActive = false
	}
}

// CreateAssignmentRequest is the validated payload for assigning a routine
type CreateAssignmentRequest struct {
	MemberID  string  `json:"member_id" validate:"required,uuid"`
	RoutineID string  `json:"routine_id" validate:"required,uuid"`
	StartDate *string `json:"start_date" validate:"omitempty,date"`
	EndDate   *string `json:"end_date" validate:"omitempty,date"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// Check rejects assignments that end before they start
func (r *CreateAssignmentRequest) Check() []validator.FieldError {
	if r.StartDate == nil || r.EndDate == nil {
		return nil
	}
	start, errStart := validator.ParseDate(*r.StartDate)
	end, errEnd := validator.ParseDate(*r.EndDate)
	if errStart != nil || errEnd != nil {
		return nil
	}
	if end.Before(start) {
		return []validator.FieldError{{
			Field:   "end_date",
			Reason:  validator.ReasonOutOfRange,
			Message: "must not be before start_date",
		}}
	}
	return nil
}
