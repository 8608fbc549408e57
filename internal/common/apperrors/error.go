// Package apperrors defines the layered error type used across the
// service. Errors are declared as package-level values, derived from a
// base with New, and carry an HTTP status code so the transport layer
// can map them without inspecting messages.
package apperrors

type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	Msg(msg string) Error
	MsgErr(msg string, err ...error) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
