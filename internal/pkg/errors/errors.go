package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks requests that reference rows in the wrong state.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidArgument is a generic sentinel for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTransaction marks a persistence failure that rolled back the whole call.
	ErrTransaction = errors.New("transaction failed")
)

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
