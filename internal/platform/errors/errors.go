// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode defines the closed set of error kinds used across the module
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeTransport is for network failures and timeouts reaching the gateway
	ErrorCodeTransport

	// ErrorCodeHTTP is for non-2xx responses without a parseable gateway error body
	ErrorCodeHTTP

	// ErrorCodeRemote is for application-level errors reported by the gateway,
	// carrying a machine-readable code
	ErrorCodeRemote

	// ErrorCodeDecode is for responses that did not match the expected shape;
	// a client/service contract violation, not retryable
	ErrorCodeDecode

	// ErrorCodeIntegrity is for delivery-report callbacks whose signature or
	// timestamp was rejected
	ErrorCodeIntegrity

	// ErrorCodeInvalidArgument is for caller-supplied parameters that violate a
	// documented constraint, detected before any network call
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for struct validation failures (input data)
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing errors on inbound payloads
	ErrorCodeJSON

	// ErrorCodeUnauthorized is for auth failures on the listener surface
	ErrorCodeUnauthorized
)

// String names the code for logs and CLI output
// the wire form stays numeric, see Wire
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodePanic:
		return "panic"
	case ErrorCodeTransport:
		return "transport"
	case ErrorCodeHTTP:
		return "http"
	case ErrorCodeRemote:
		return "remote"
	case ErrorCodeDecode:
		return "decode"
	case ErrorCodeIntegrity:
		return "integrity"
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeJSON:
		return "json"
	case ErrorCodeUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// HTTPStatusCode turns an ErrorCode into an http status code
// Used by the report listener when replying to the gateway
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeValidation, ErrorCodeJSON, ErrorCodeDecode:
		return http.StatusBadRequest
	case ErrorCodeIntegrity, ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeTransport:
		return http.StatusBadGateway
	case ErrorCodeHTTP, ErrorCodeRemote, ErrorCodePanic, ErrorCodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps an error to a distinct non-zero process exit code for the CLI
// 0 is reserved for success; codes are stable so scripts can branch on them
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case ErrorCodeInvalidArgument, ErrorCodeValidation:
		return 2
	case ErrorCodeTransport:
		return 3
	case ErrorCodeHTTP:
		return 4
	case ErrorCodeRemote:
		return 5
	case ErrorCodeDecode:
		return 6
	case ErrorCodeIntegrity:
		return 7
	default:
		return 1
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON-serializable form returned by the listener
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// Transportf returns a transport error (network failure, timeout)
func Transportf(format string, a ...any) error { return Newf(ErrorCodeTransport, format, a...) }

// HTTPf returns an http status error
func HTTPf(format string, a ...any) error { return Newf(ErrorCodeHTTP, format, a...) }

// Remotef returns a remote gateway error
func Remotef(format string, a ...any) error { return Newf(ErrorCodeRemote, format, a...) }

// Decodef returns a decode (contract violation) error
func Decodef(format string, a ...any) error { return Newf(ErrorCodeDecode, format, a...) }

// Integrityf returns an integrity error
func Integrityf(format string, a ...any) error { return Newf(ErrorCodeIntegrity, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unauthorizedf returns an unauthorized error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// Retry semantics

// Retryable reports whether a caller may reasonably retry the failed call.
// This layer never retries on its own; the hint is for callers
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeTransport, ErrorCodeHTTP:
		return true
	default:
		return false
	}
}
