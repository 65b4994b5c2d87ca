package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a resource with the same identity exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrVersionMismatch is returned when a caller's expected schedule version
	// is stale.
	ErrVersionMismatch = errors.New("application: schedule version mismatch")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

// AuditError reports that a schedule change was saved but its activity log
// entries were not. Result holds the saved schedule.
type AuditError struct {
	Result ScheduleResult
	Err    error
}

// Error implements the error interface.
func (e *AuditError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("schedule saved but activity not recorded: %v", e.Err)
}

// Unwrap exposes the activity log failure.
func (e *AuditError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
