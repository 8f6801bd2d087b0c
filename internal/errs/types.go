package errs

import (
	"strings"
)

// ErrorType is the "type" field of every structured error body.
type ErrorType string

const (
	TypeValidation    ErrorType = "VALIDATION_ERROR"
	TypeNotFound      ErrorType = "NOT_FOUND"
	TypeConflict      ErrorType = "CONFLICT"
	TypeUnauthorized  ErrorType = "UNAUTHORIZED"
	TypeBadRequest    ErrorType = "BAD_REQUEST"
	TypeUnprocessable ErrorType = "UNPROCESSABLE_ENTITY"
	TypeInternal      ErrorType = "INTERNAL_ERROR"
)

// FallbackMessage replaces the message of every masked failure.
const FallbackMessage = "An unexpected error occurred."

// HTTPError is the main failure type for API responses.
//
// Fields:
//   - Status: HTTP status code.
//   - Type: error class, rendered in the response body when set.
//   - Code: optional finer-grained code (e.g. "USER_NOT_FOUND").
//   - Message: human-friendly message.
//   - Expose: nil means "decide from Status" (4xx exposed, 5xx masked).
//   - Headers: extra response headers; response headers win on conflict.
type HTTPError struct {
	Status  int               `json:"-"`
	Type    ErrorType         `json:"type,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Expose  *bool             `json:"-"`
	Headers map[string]string `json:"-"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError. It does not compare fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// Exposed resolves the expose flag, defaulting to Status < 500 when unset.
func (e *HTTPError) Exposed() bool {
	if e.Expose != nil {
		return *e.Expose
	}

	return e.Status > 0 && e.Status < 500
}

// Body returns the structured response body for typed errors and nil otherwise.
func (e *HTTPError) Body() map[string]any {
	if e.Type == "" {
		return nil
	}

	body := map[string]any{
		"type":    string(e.Type),
		"message": e.Message,
	}
	if e.Code != "" {
		body["code"] = e.Code
	}

	return body
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message

	return &clone
}

// WithHeader returns a copy of this HTTPError carrying an extra response header.
func (e *HTTPError) WithHeader(key, value string) *HTTPError {
	clone := *e
	clone.Headers = make(map[string]string, len(e.Headers)+1)
	for k, v := range e.Headers {
		clone.Headers[k] = v
	}
	clone.Headers[key] = value

	return &clone
}

// Hidden returns a copy of this HTTPError that is never exposed to the client.
func (e *HTTPError) Hidden() *HTTPError {
	clone := *e
	hidden := false
	clone.Expose = &hidden

	return &clone
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
