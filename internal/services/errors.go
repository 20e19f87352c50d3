package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// ErrStorageDisabled is returned by operations that need object storage when none is configured
var ErrStorageDisabled = errors.New("photo storage is not configured")

// AuthorizationError is returned when the caller's role does not allow an operation
type AuthorizationError struct {
	Resource access.Resource
	Action   access.Action
	Reason   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s %s: %s", e.Action, e.Resource, e.Reason)
}

// Authentication failure reasons
const (
	AuthInvalidCredentials = "invalid_credentials"
	AuthExpired            = "expired"
	AuthInvalid            = "invalid"
)

// AuthenticationError is returned when credentials or a session token are not accepted
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	switch e.Reason {
	case AuthInvalidCredentials:
		return "invalid email or password"
	case AuthExpired:
		return "session expired"
	default:
		return "invalid session"
	}
}

// NotFoundError is returned when a referenced record does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError is returned when a write collides with a unique value
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StorageError wraps an unexpected storage failure. Only Op and CorrelationID are
// meant for clients; Err is logged.
type StorageError struct {
	Op            string
	CorrelationID string
	Timeout       bool
	Err           error
}

func (e *StorageError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("storage timeout during %s", e.Op)
	}
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// storageFailure turns repository errors into the service error vocabulary.
// resource and id name the record a missing row or dangling reference points at.
func storageFailure(logger *logrus.Logger, op, resource, id string, err error) error {
	if err == nil {
		return nil
	}

	var dupErr *database.DuplicateKeyError
	switch {
	case errors.Is(err, database.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id}
	case errors.As(err, &dupErr):
		field := dupErr.Field()
		return &ConflictError{Field: field, Message: fmt.Sprintf("%s already exists", field)}
	case errors.Is(err, database.ErrReferenceNotFound):
		return &NotFoundError{Resource: resource, ID: id}
	}

	storageErr := &StorageError{
		Op:            op,
		CorrelationID: uuid.NewString(),
		Timeout:       errors.Is(err, database.ErrTimeout),
		Err:           err,
	}
	logger.WithFields(logrus.Fields{
		"op":             op,
		"correlation_id": storageErr.CorrelationID,
		"timeout":        storageErr.Timeout,
	}).WithError(err).Error("Storage operation failed")

	return storageErr
}

// passThrough reports errors that are already part of the service vocabulary
func passThrough(err error) bool {
	var (
		authzErr      *AuthorizationError
		authnErr      *AuthenticationError
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
		storageErr    *StorageError
		rateLimitErr  *RateLimitError
		validationErr *validator.ValidationError
		domainErr     *billing.DomainError
	)
	return errors.As(err, &authzErr) || errors.As(err, &authnErr) ||
		errors.As(err, &notFoundErr) || errors.As(err, &conflictErr) ||
		errors.As(err, &storageErr) || errors.As(err, &rateLimitErr) ||
		errors.As(err, &validationErr) || errors.As(err, &domainErr) ||
		errors.Is(err, ErrStorageDisabled)
}
