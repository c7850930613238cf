package external

import (
	"context"
	"errors"
	"fmt"
)

// Error codes for classified completion failures.
const (
	CodeTimeout = "STRATEGY_TIMEOUT"
	CodeNetwork = "NETWORK_ERROR"
)

// Error wraps a completion failure with a stable machine-readable code so
// the boundary can turn it into a structured result instead of a crash.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("external strategy %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error { return e.Err }

// Classify maps a provider error to a coded Error. Deadline and cancellation
// failures become timeouts; everything else is reported as a network error.
func Classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Code:    CodeTimeout,
			Message: "the model call did not complete within the configured timeout",
			Err:     err,
		}
	}
	return &Error{
		Code:    CodeNetwork,
		Message: err.Error(),
		Err:     err,
	}
}
