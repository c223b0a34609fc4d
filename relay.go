package relay

import (
	"net/http"
	"time"

	"github.com/pulsefeed/relay/internal"
)

// Type aliases - public API
type (
	// Router is the contract every adapter implements.
	Router = internal.Router

	// Context is the per-request mutable state bag.
	Context = internal.Context

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware runs before the handler and may short-circuit.
	Middleware = internal.Middleware

	// Response is a fully materialized HTTP response.
	Response = internal.Response

	// Schema is a one-level-deep body validation schema.
	Schema = internal.Schema

	// Property declares a single schema field.
	Property = internal.Property

	// Error is an HTTP-mappable error rendered as the envelope.
	Error = internal.Error

	// ErrorOption configures an Error.
	ErrorOption = internal.ErrorOption

	// Config configures router construction.
	Config = internal.Config

	// Engine selects a router adapter family.
	Engine = internal.Engine

	// State is the shared application state map.
	State = internal.State

	// Cookie is a parsed request cookie.
	Cookie = internal.Cookie

	// CookieOption configures a Set-Cookie fragment.
	CookieOption = internal.CookieOption
)

// Adapter engines.
const (
	EngineChi     = internal.EngineChi
	EngineRegex   = internal.EngineRegex
	DefaultEngine = internal.DefaultEngine
)

// Schema field types.
const (
	TypeString  = internal.TypeString
	TypeNumber  = internal.TypeNumber
	TypeBoolean = internal.TypeBoolean
	TypeArray   = internal.TypeArray
)

// New builds the router adapter selected by cfg.Engine. An
// unrecognized engine falls back to the default adapter with a
// warning; a recognized engine whose construction fails returns that
// error.
func New(cfg Config) (Router, error) {
	return internal.NewRouter(cfg)
}

// NewResponse creates a raw response. Returning one from a handler
// bypasses context-level status and headers entirely.
func NewResponse(status int, body []byte) *Response {
	return internal.NewResponse(status, body)
}

// Schema constructors.

// Object builds an object schema from property declarations.
func Object(properties map[string]Property) *Schema {
	return internal.Object(properties)
}

// Required declares a required property of the given type.
func Required(fieldType string) Property {
	return internal.Required(fieldType)
}

// Optional declares an optional property of the given type.
func Optional(fieldType string) Property {
	return internal.Optional(fieldType)
}

// Error constructors.

func ErrValidation(message string, opts ...ErrorOption) *Error {
	return internal.ErrValidation(message, opts...)
}

func ErrNotFound(message string, opts ...ErrorOption) *Error {
	return internal.ErrNotFound(message, opts...)
}

func ErrForbidden(message string, opts ...ErrorOption) *Error {
	return internal.ErrForbidden(message, opts...)
}

func ErrUnauthorized(message string, opts ...ErrorOption) *Error {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrInternal(message string, opts ...ErrorOption) *Error {
	return internal.ErrInternal(message, opts...)
}

// WithError attaches an underlying error for logging.
func WithError(err error) ErrorOption {
	return internal.WithError(err)
}

// WithDetails attaches per-field messages to the error.
func WithDetails(details ...string) ErrorOption {
	return internal.WithDetails(details...)
}

// Cookie options.

// WithExpires sets the Expires attribute.
func WithExpires(t time.Time) CookieOption {
	return internal.WithExpires(t)
}

// WithCookiePath sets the Path attribute.
func WithCookiePath(path string) CookieOption {
	return internal.WithPath(path)
}

// WithHTTPOnly sets the HttpOnly attribute.
func WithHTTPOnly() CookieOption {
	return internal.WithHTTPOnly()
}

// WithSecure sets the Secure attribute.
func WithSecure() CookieOption {
	return internal.WithSecure()
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(mode string) CookieOption {
	return internal.WithSameSite(mode)
}

// Redirect builds a raw redirect response.
func Redirect(status int, location string) *Response {
	resp := internal.NewResponse(status, nil)
	resp.Header.Set("Location", location)
	return resp
}

// interface guard
var _ http.Handler = (Router)(nil)
