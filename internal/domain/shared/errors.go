// Package shared holds the error type every layer of the bridge speaks.
package shared

// DomainError is a classified failure. The code selects the HTTP status
// and the metrics label; only the message is ever shown to the caller.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errors the HTTP surface raises itself, before any pipeline runs.
var (
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrNotFound     = NewDomainError("NOT_FOUND", "not found")
)
