package loop

import (
	"errors"
	"fmt"
)

var (
	ErrTurnBudgetExceeded = errors.New("turn budget exceeded")
	ErrUnrecognized       = errors.New("unrecognized model response")
	ErrCancelled          = errors.New("investigation cancelled")
)

// BudgetExceededError reports that no final answer arrived within MaxTurns provider calls.
type BudgetExceededError struct {
	MaxTurns int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("no final answer within %d turns", e.MaxTurns)
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrTurnBudgetExceeded
}

// UnrecognizedResponseError carries the provider's reason for a reply the loop cannot act on.
type UnrecognizedResponseError struct {
	Turn   int
	Reason string
}

func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("turn %d: unrecognized model response: %s", e.Turn, e.Reason)
}

func (e *UnrecognizedResponseError) Is(target error) bool {
	return target == ErrUnrecognized
}

// ProviderCallError wraps a failed provider call.
type ProviderCallError struct {
	Turn  int
	Cause error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("turn %d: provider call failed: %v", e.Turn, e.Cause)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Cause
}
