package toolmanager

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrDuplicateName = errors.New("tool already registered")
	ErrToolNotFound  = errors.New("tool not found")
)

// -- Error Types --

// DuplicateNameError is returned when a tool name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// NotFoundError is returned by Resolve for unknown names. It is recoverable:
// Execute turns it into an error result for the model.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q does not exist", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// InvalidArgumentsError is returned when model arguments do not fit a tool's schema.
type InvalidArgumentsError struct {
	Tool  string
	Cause error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Cause)
}

func (e *InvalidArgumentsError) Unwrap() error {
	return e.Cause
}
