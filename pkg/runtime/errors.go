// Package runtime provides the pooled connection, transaction helper and
// error taxonomy shared by the linknova store.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a topic, category or bookmark does not exist for the user.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique or foreign key constraint is violated.
	ErrConflict = errors.New("conflicting record")

	// ErrStoreUnavailable is returned when the database cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidState is returned when stored data breaks an expected precondition,
	// such as a user without a default category.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// PostgreSQL error codes the store reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeAdminShutdown       = "57P01"
	codeCrashShutdown       = "57P02"
	codeCannotConnectNow    = "57P03"
	codeTooManyConnections  = "53300"
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap ties every validation failure to ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// EntityError names the operation and the record an error refers to.
type EntityError struct {
	Op     string
	Entity string
	Key    string
	Err    error
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(e.Entity)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EntityError) Unwrap() error {
	return e.Err
}

// Wrap classifies err and attaches the operation and record identity.
// It returns nil for a nil err.
func Wrap(op, entity, key string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EntityError
	if errors.As(err, &ee) {
		return err
	}
	return &EntityError{Op: op, Entity: entity, Key: key, Err: Classify(err)}
}

// Classify maps driver errors onto the store sentinels. Errors that already
// carry a sentinel, and context cancellation, pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if hasSentinel(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation, pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == codeAdminShutdown,
			pgErr.Code == codeCrashShutdown,
			pgErr.Code == codeCannotConnectNow,
			pgErr.Code == codeTooManyConnections:
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return err
}

func hasSentinel(err error) bool {
	for _, s := range []error{ErrNotFound, ErrConflict, ErrStoreUnavailable, ErrInvalidState, ErrInvalidInput} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
