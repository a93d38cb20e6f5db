package errors

import "errors"

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "price must be greater than zero".
	Message string

	// Code (required) is one of the ErrorCode values.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether err, or any error it wraps, carries the given code.
func ErrorCodeEquals(err error, code ErrorCode) bool {
	var details *ErrorDetails
	if errors.As(err, &details) {
		return details.Code == string(code)
	}

	if base, ok := AsBaseError(err); ok {
		return base.IsAnyCodeEqual(code)
	}

	return false
}
