package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestMember_Derive(t *testing.T) {
	today := mustDate(t, "2025-03-10").Time
	bmi := 24.65

	tests := []struct {
		name     string
		stored   MemberStatus
		next     string
		expected MemberStatus
	}{
		{"paid up", MemberStatusActive, "2025-03-10", MemberStatusActive},
		{"overdue", MemberStatusActive, "2025-03-09", MemberStatusDelinquent},
		{"stale delinquent flag cleared", MemberStatusDelinquent, "2025-04-01", MemberStatusActive},
		{"inactive kept", MemberStatusInactive, "2025-01-01", MemberStatusInactive},
		{"suspended kept", MemberStatusSuspended, "2025-05-01", MemberStatusSuspended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := mustDate(t, tt.next)
			m := &Member{Status: tt.stored, NextPaymentDate: &next, BMI: &bmi}
			m.Derive(today)
			assert.Equal(t, tt.expected, m.Status)
			require.NotNil(t, m.BMICategory)
			assert.Equal(t, "Normal", *m.BMICategory)
		})
	}

	t.Run("no next payment date", func(t *testing.T) {
		m := &Member{Status: MemberStatusActive}
		m.Derive(today)
		assert.Equal(t, MemberStatusActive, m.Status)
		assert.Nil(t, m.BMICategory)
	})
}

func TestUpdateMemberRequest_Check(t *testing.T) {
	assert.Empty(t, (&UpdateMemberRequest{}).Check())

	next := "2025-05-01"
	errs := (&UpdateMemberRequest{NextPaymentDate: &next}).Check()
	require.Len(t, errs, 1)
	assert.Equal(t, "next_payment_date", errs[0].Field)
}

func TestRoutineAssignment_Derive(t *testing.T) {
	today := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	ended := mustDate(t, "2025-03-09")
	a := &RoutineAssignment{IsActive: true, EndDate: &ended}
	a.Derive(today)
	assert.False(t, a.IsActive)

	endsToday := mustDate(t, "2025-03-10")
	b := &RoutineAssignment{IsActive: true, EndDate: &endsToday}
	b.Derive(today)
	assert.True(t, b.IsActive)

	open := &RoutineAssignment{IsActive: true}
	open.Derive(today)
	assert.True(t, open.IsActive)
}

func TestCreateAssignmentRequest_Check(t *testing.T) {
	start, end := "2025-03-01", "2025-02-01"
	errs := (&CreateAssignmentRequest{StartDate: &start, EndDate: &end}).Check()
	require.Len(t, errs, 1)
	assert.Equal(t, "end_date", errs[0].Field)

	end = "2025-03-01"
	assert.Empty(t, (&CreateAssignmentRequest{StartDate: &start, EndDate: &end}).Check())
}

func TestCreateExerciseRequest_ToExercise(t *testing.T) {
	req := CreateExerciseRequest{Name: "Squat", MuscleGroup: "Legs", Sets: 4, Reps: "8-10"}
	routine := uuid.New()
	ex := req.ToExercise(routine, 2)
	assert.Equal(t, routine, ex.RoutineID)
	assert.Equal(t, 2, ex.OrderIndex)
	assert.Equal(t, "Squat", ex.Name)
}

func TestMemberStatus_LocksOut(t *testing.T) {
	assert.False(t, MemberStatusActive.LocksOut())
	assert.False(t, MemberStatusDelinquent.LocksOut())
	assert.True(t, MemberStatusInactive.LocksOut())
	assert.True(t, MemberStatusSuspended.LocksOut())
}
