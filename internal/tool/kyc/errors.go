package kyc

import "fmt"

// StoreReadError wraps a failed profile lookup.
type StoreReadError struct {
	UserID string
	Cause  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to read KYC profile %s: %v", e.UserID, e.Cause)
}

func (e *StoreReadError) Unwrap() error { return e.Cause }
