package store

import "fmt"

// StorageError reports that an operation could not reach the underlying
// medium or that a persisted record failed to parse. Callers must not assume
// partial writes succeeded.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
