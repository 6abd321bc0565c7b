package remote

import (
	"errors"
	"fmt"
)

// BackendError is the single failure kind of the remote client: a
// transport error, a non-2xx status, or an unusable response body.
type BackendError struct {
	Op         string
	StatusCode int // 0 for transport failures
	Body       string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend error: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("backend error: %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsBackendError reports whether err is a BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
