package apierr

import (
	"fmt"
	"net/http"

	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError classifies a service error by its sentinel and picks the status.
func FromError(code string, err error) *Error {
	status := http.StatusInternalServerError
	switch {
	case pkgerr.IsNotFound(err):
		status = http.StatusNotFound
	case pkgerr.IsValidation(err):
		status = http.StatusConflict
	case pkgerr.IsInvalidArgument(err):
		status = http.StatusBadRequest
	}
	return &Error{Status: status, Code: code, Err: err}
}
