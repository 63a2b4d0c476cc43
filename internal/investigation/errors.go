package investigation

import (
	"errors"
	"fmt"
)

var ErrInvalidAlert = errors.New("invalid alert")

// InvalidAlertError names the offending field.
type InvalidAlertError struct {
	Field  string
	Reason string
}

func (e *InvalidAlertError) Error() string {
	return fmt.Sprintf("invalid alert: %s %s", e.Field, e.Reason)
}

func (e *InvalidAlertError) Is(target error) bool {
	return target == ErrInvalidAlert
}

// AlertFileError reports an alert file that could not be read or decoded.
type AlertFileError struct {
	Path  string
	Index int // -1 when the whole file failed
	Cause error
}

func (e *AlertFileError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("alert file %s: entry %d: %v", e.Path, e.Index, e.Cause)
	}
	return fmt.Sprintf("alert file %s: %v", e.Path, e.Cause)
}

func (e *AlertFileError) Unwrap() error {
	return e.Cause
}
