package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a unique constraint is violated
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrTimeout is returned when a storage call exceeds its deadline
	ErrTimeout = errors.New("storage timeout")

	// ErrReferenceNotFound is returned when a foreign key points at a missing record
	ErrReferenceNotFound = errors.New("referenced record not found")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqQueryCanceled       = "57014"
)

// DuplicateKeyError carries the violated constraint
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// constraintFields maps unique constraints to the request field they protect
var constraintFields = map[string]string{
	"members_email_key":                             "email",
	"members_member_number_key":                     "member_number",
	"staff_users_email_key":                         "email",
	"payments_idempotency_key_key":                  "idempotency_key",
	"routine_assignments_one_active_per_member":     "member_id",
	"exercise_templates_routine_id_order_index_key": "order_index",
}

// Field returns the request field behind the violated constraint, if known
func (e *DuplicateKeyError) Field() string {
	if field, ok := constraintFields[e.Constraint]; ok {
		return field
	}
	return strings.TrimSuffix(e.Constraint, "_key")
}

// translateError maps driver errors onto the package's sentinel errors
func translateError(ctx context.Context, err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("failed to %s: %w", action, ErrTimeout)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &DuplicateKeyError{Constraint: pqErr.Constraint}
		case pqForeignKeyViolation:
			return fmt.Errorf("failed to %s: %w", action, ErrReferenceNotFound)
		case pqQueryCanceled:
			return fmt.Errorf("failed to %s: %w", action, ErrTimeout)
		}
	}

	return fmt.Errorf("failed to %s: %w", action, err)
}

// expectAffected turns an update or delete that matched no row into ErrNotFound
func expectAffected(ctx context.Context, result sql.Result, action string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(ctx, err, action)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
