package internal

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes used in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error is an HTTP-mappable error with all data needed to render the
// error envelope. It implements the error interface.
type Error struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Code is the machine-readable error code (e.g. NOT_FOUND).
	Code string

	// Message is the user-facing error message.
	Message string

	// Details carries per-field validation messages when available.
	Details []string

	// Status is the HTTP status code.
	Status int
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorOption configures an Error.
type ErrorOption func(*Error)

// WithError attaches an underlying error for logging.
func WithError(err error) ErrorOption {
	return func(e *Error) {
		e.Err = err
	}
}

// WithDetails attaches per-field messages to the error.
func WithDetails(details ...string) ErrorOption {
	return func(e *Error) {
		e.Details = details
	}
}

// NewError creates an Error with the given status, code, and message.
func NewError(status int, code, message string, opts ...ErrorOption) *Error {
	e := &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convenience constructors for the error taxonomy.

func ErrValidation(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusBadRequest, CodeValidation, message, opts...)
}

func ErrNotFound(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusNotFound, CodeNotFound, message, opts...)
}

func ErrForbidden(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusForbidden, CodeForbidden, message, opts...)
}

func ErrUnauthorized(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusUnauthorized, CodeUnauthorized, message, opts...)
}

func ErrInternal(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusInternalServerError, CodeInternal, message, opts...)
}

// AsError extracts the *Error from an error chain.
// Returns nil if the chain carries no *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// envelope is the fixed JSON error-response shape.
type envelope struct {
	Success bool          `json:"success"`
	Error   envelopeError `json:"error"`
}

type envelopeError struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"requestId"`
	Details   []string `json:"details,omitempty"`
}

// HandleError maps any error to the fixed envelope shape and writes it.
// It is the single catching boundary per request: every failure from
// decode, validation, middleware, or handler stages lands here exactly
// once, and it never fails itself.
func HandleError(c *Context, err error) *Response {
	status := http.StatusInternalServerError
	code := CodeInternal
	message := "internal server error"
	var details []string

	if e := AsError(err); e != nil {
		status = e.Status
		code = e.Code
		message = e.Message
		details = e.Details
	}

	body, merr := json.Marshal(envelope{
		Error: envelopeError{
			Code:      code,
			Message:   message,
			RequestID: c.RequestID(),
			Details:   details,
		},
	})
	if merr != nil {
		// Marshal of plain strings cannot fail; keep a literal fallback
		// so the boundary itself never errors.
		body = []byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"internal server error","requestId":"` + c.RequestID() + `"}}`)
	}

	resp := NewResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
