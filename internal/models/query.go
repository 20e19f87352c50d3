package models

import "github.com/google/uuid"

// AttendanceQuery is the validated query string of an attendance listing
type AttendanceQuery struct {
	Date     *string `json:"date" validate:"omitempty,date"`
	MemberID *string `json:"member_id" validate:"omitempty,uuid"`
}

// MemberQuery narrows a listing to one member
type MemberQuery struct {
	MemberID *string `json:"member_id" validate:"omitempty,uuid"`
}

// UUIDPtr parses an optional id. Callers pass values that already passed validation.
func UUIDPtr(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
