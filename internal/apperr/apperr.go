package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of application error. Handlers map codes to HTTP
// statuses; everything unrecognized falls back to InternalError.
type Code string

const (
	MissingParameter            Code = "missing_parameter"
	InvalidAction               Code = "invalid_action"
	InvalidAmount               Code = "invalid_amount"
	InsufficientBalance         Code = "insufficient_balance"
	UnknownFormat               Code = "unknown_format"
	GenerationBackendError      Code = "generation_backend_error"
	SignatureVerificationFailed Code = "signature_verification_failed"
	InternalError               Code = "internal_error"
)

// Error is an application error carrying a taxonomy code and a
// human-readable message safe to surface to the client.
type Error struct {
	Code    Code
	Message string
	Err     error // optional underlying cause, for diagnostics
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an application error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an application error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the taxonomy code from err, or InternalError if err is not
// an application error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalError
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch CodeOf(err) {
	case MissingParameter, InvalidAction, InvalidAmount, UnknownFormat, SignatureVerificationFailed:
		return http.StatusBadRequest
	case InsufficientBalance:
		return http.StatusPaymentRequired
	case GenerationBackendError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
