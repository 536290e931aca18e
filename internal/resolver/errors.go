package resolver

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every MissingFieldError
var ErrMissingField = errors.New("missing field in lookup result")

// HTTPStatusError reports a non-2xx response from the lookup service
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// TransportError wraps a lookup that could not be completed at all.
// It is fatal to a run.
type TransportError struct {
	Postcode string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Postcode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MissingFieldError means the lookup succeeded but the result lacks the
// field needed to pick a key, or the field could not be read.
type MissingFieldError struct {
	Postcode string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("lookup %s: %s: %v", e.Postcode, e.Field, ErrMissingField)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
