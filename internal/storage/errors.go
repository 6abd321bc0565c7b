package storage

import "fmt"

// StorageError represents a failure of the persistence layer.
type StorageError struct {
	Op   string // "read", "parse", "write", "query", "migrate"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
