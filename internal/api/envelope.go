// Package api defines the transport-agnostic operation envelope and the error
// codes returned across the port boundary. Every public operation returns an
// Envelope; raw errors and panics never cross out of the handler layer.
package api

// Error codes carried in Envelope.Error. Callers use these to distinguish
// expected business failures from bugs (INTERNAL_ERROR).
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidState    = "INVALID_STATE"
	CodePersistence     = "PERSISTENCE_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorInfo describes an operation failure.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Envelope is the uniform operation result: either Success with Payload, or
// an ErrorInfo.
type Envelope[T any] struct {
	Success bool       `json:"success"`
	Payload *T         `json:"payload"`
	Error   *ErrorInfo `json:"error"`
}

// OK returns a success envelope wrapping payload.
func OK[T any](payload T) Envelope[T] {
	return Envelope[T]{Success: true, Payload: &payload}
}

// Fail returns a failure envelope with the given code and message.
func Fail[T any](code, message string) Envelope[T] {
	return Envelope[T]{Error: &ErrorInfo{Message: message, Code: code}}
}
