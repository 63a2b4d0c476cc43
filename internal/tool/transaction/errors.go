package transaction

import "fmt"

// StoreReadError wraps a failed transaction query.
type StoreReadError struct {
	Op    string
	Cause error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Cause)
}

func (e *StoreReadError) Unwrap() error { return e.Cause }
