package simpleknn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed point buffers, non-finite
	// coordinates, empty input, mismatched output buffers and invalid
	// configuration. It is a caller error and is never worth retrying.
	ErrInvalidInput = errors.New("simpleknn: invalid input")

	// ErrResourceExhausted is returned when a device allocation would exceed
	// the device memory budget. The caller may retry after freeing memory.
	ErrResourceExhausted = errors.New("simpleknn: resource exhausted")

	// ErrInternalInvariant indicates a defect. The invocation that hit it is
	// aborted; no shared state is affected.
	ErrInternalInvariant = errors.New("simpleknn: internal invariant violation")
)

// InputError describes which value of the input was rejected.
// It unwraps to ErrInvalidInput.
type InputError struct {
	// Index is the offset into the flat coordinate buffer, or -1 when the
	// problem is not tied to a single value.
	Index  int
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("simpleknn: invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("simpleknn: invalid input at %d: %s", e.Index, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(index int, format string, args ...any) error {
	return &InputError{Index: index, Reason: fmt.Sprintf(format, args...)}
}
