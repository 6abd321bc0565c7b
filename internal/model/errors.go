package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an unknown item id.
	ErrNotFound = errors.New("item not found")
	// ErrDuplicateID is returned when appending an item whose id is already stored.
	ErrDuplicateID = errors.New("duplicate item id")
)

// ValidationError reports missing or malformed user input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
