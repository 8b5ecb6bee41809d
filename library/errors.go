package library

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the operation outcomes callers branch on.
// ErrReservedConflict and ErrNoCopies both satisfy errors.Is(err, ErrConflict).
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrReservedConflict   = fmt.Errorf("%w: book is reserved for another student", ErrConflict)
	ErrNoCopies           = fmt.Errorf("%w: no copies available", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError rejects malformed input before any write happens.
// Message is human-readable and safe to show to the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a datastore failure. The in-progress write has been
// rolled back; there is no automatic retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// isUniqueViolation matches the duplicate-key errors of both supported
// drivers (SQLite "UNIQUE constraint failed", MySQL error 1062).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

// isForeignKeyViolation matches referential-integrity errors of both drivers.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint fails")
}
