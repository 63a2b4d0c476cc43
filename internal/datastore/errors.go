package datastore

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	ErrNotFound              = errors.New("record not found")
)

// -- Error Types --

// DataSourceUnavailableError reports a store that has not been initialised:
// a missing database file or a missing table.
type DataSourceUnavailableError struct {
	Source string
	Cause  error
}

func (e *DataSourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("data source unavailable: %s: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("data source unavailable: %s", e.Source)
}

func (e *DataSourceUnavailableError) Unwrap() error {
	return e.Cause
}

func (e *DataSourceUnavailableError) Is(target error) bool {
	return target == ErrDataSourceUnavailable
}
