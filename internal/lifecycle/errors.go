package lifecycle

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorValidation    ErrorCode = "VALIDATION"
	ErrorPersistence   ErrorCode = "PERSISTENCE"
	ErrorNotFound      ErrorCode = "NOT_FOUND"
	ErrorNotification  ErrorCode = "NOTIFICATION"
	ErrorConfiguration ErrorCode = "CONFIGURATION"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("lifecycle: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("lifecycle: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the error code from err, or ErrorPersistence when err is
// not a lifecycle error.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrorPersistence
}
