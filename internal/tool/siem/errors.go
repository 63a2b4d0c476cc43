package siem

import "fmt"

// StoreReadError wraps a failed event query.
type StoreReadError struct {
	Cause error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to query SIEM events: %v", e.Cause)
}

func (e *StoreReadError) Unwrap() error { return e.Cause }
