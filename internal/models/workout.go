package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is a training session logged by or for a member
type WorkoutSession struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	MemberID    uuid.UUID  `json:"member_id" db:"member_id"`
	RoutineID   *uuid.UUID `json:"routine_id,omitempty" db:"routine_id"`
	Date        Date       `json:"date" db:"date"`
	StartTime   string     `json:"start_time" db:"start_time"`
	EndTime     *string    `json:"end_time,omitempty" db:"end_time"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// CreateWorkoutSessionRequest is the validated payload for logging a workout.
// Members logging their own session may omit member_id.
type CreateWorkoutSessionRequest struct {
	MemberID    *string `json:"member_id" validate:"omitempty,uuid"`
	RoutineID   *string `json:"routine_id" validate:"omitempty,uuid"`
	Date        *string `json:"date" validate:"omitempty,date"`
	StartTime   string  `json:"start_time" validate:"required,clock"`
	EndTime     *string `json:"end_time" validate:"omitempty,clock"`
	IsCompleted bool    `json:"is_completed"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// PhysicalProgress is a dated body measurement of a member
type PhysicalProgress struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	MemberID        uuid.UUID  `json:"member_id" db:"member_id"`
	MeasurementDate Date       `json:"measurement_date" db:"measurement_date"`
	Weight          *float64   `json:"weight,omitempty" db:"weight"`
	Height          *float64   `json:"height,omitempty" db:"height"`
	BMI             *float64   `json:"bmi,omitempty" db:"bmi"`
	BodyFat         *float64   `json:"body_fat,omitempty" db:"body_fat"`
	MuscleMass      *float64   `json:"muscle_mass,omitempty" db:"muscle_mass"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	RecordedBy      *uuid.UUID `json:"recorded_by,omitempty" db:"recorded_by"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// CreateProgressRequest is the validated payload for recording a measurement
type CreateProgressRequest struct {
	MeasurementDate *string  `json:"measurement_date" validate:"omitempty,date"`
	Weight          *float64 `json:"weight" validate:"omitnil,gt=0,lte=500"`
	Height          *float64 `json:"height" validate:"omitnil,gte=50,lte=300"`
	BodyFat         *float64 `json:"body_fat" validate:"omitnil,gte=0,lte=100"`
	MuscleMass      *float64 `json:"muscle_mass" validate:"omitnil,gte=0,lte=100"`
	Notes           *string  `json:"notes" validate:"omitempty,max=500"`
}
