package validator

import (
	"sort"
	"strings"
)

// Machine-readable reasons attached to every FieldError
const (
	ReasonRequired     = "required"
	ReasonTooShort     = "too_short"
	ReasonTooLong      = "too_long"
	ReasonInvalidEmail = "invalid_email"
	ReasonInvalidDate  = "invalid_date"
	ReasonInvalidTime  = "invalid_time"
	ReasonInvalidEnum  = "invalid_enum"
	ReasonOutOfRange   = "out_of_range"
	ReasonInvalidType  = "invalid_type"
	ReasonInvalidUUID  = "invalid_uuid"
	ReasonInvalidPhone = "invalid_phone"
	ReasonWeakPassword = "weak_password"
	ReasonInvalid      = "invalid"
)

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError lists every field that failed validation
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError builds a ValidationError sorted by field name
func NewValidationError(errs ...FieldError) *ValidationError {
	sorted := append([]FieldError(nil), errs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Field < sorted[j].Field
	})
	return &ValidationError{Errors: sorted}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the error reported for name, if any
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}
