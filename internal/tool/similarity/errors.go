package similarity

import "fmt"

// SearchError wraps a failed index query.
type SearchError struct {
	Collection string
	Cause      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("similarity search over %s failed: %v", e.Collection, e.Cause)
}

func (e *SearchError) Unwrap() error { return e.Cause }
