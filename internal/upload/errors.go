package upload

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType marks a file whose type is not on the allow-list.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrTooLarge marks a file over the size limit.
	ErrTooLarge = errors.New("too large")
)

// ValidationError reports why a file was rejected.
type ValidationError struct {
	Name   string
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Name, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}
