package errs

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// NewUnauthorizedError creates the uniform 401 returned for any missing or
// invalid credential. The message never says which check failed.
func NewUnauthorizedError() *HTTPError {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Type:    TypeUnauthorized,
		Message: http.StatusText(http.StatusUnauthorized),
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// An empty message falls back to the status text ("Bad Request").
func NewBadRequestError(message string) *HTTPError {
	if message == "" {
		message = http.StatusText(http.StatusBadRequest)
	}

	return &HTTPError{
		Status:  http.StatusBadRequest,
		Type:    TypeBadRequest,
		Message: message,
	}
}

// NewUnprocessableEntityError creates a 422, used for bodies that cannot be decoded.
func NewUnprocessableEntityError(message string) *HTTPError {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Type:    TypeUnprocessable,
		Message: message,
	}
}

// NewNotFoundError creates a 404 for a resource type.
//
// With an id the message names it ("Customer with ID '7' not found"),
// without one it stays generic ("Customer resource not found").
// The code is always "<RESOURCE>_NOT_FOUND".
func NewNotFoundError(resource string, id any) *HTTPError {
	message := UnspecifiedResourceNotFound(resource)
	if id != nil && id != "" {
		message = ResourceNotFound(resource, id)
	}

	return &HTTPError{
		Status:  http.StatusNotFound,
		Type:    TypeNotFound,
		Code:    MakeUpperCaseWithUnderscores(resource) + "_NOT_FOUND",
		Message: message,
	}
}

// NewRouteNotFoundError is the 404 used by the local server for unknown routes.
func NewRouteNotFoundError() *HTTPError {
	return &HTTPError{
		Status:  http.StatusNotFound,
		Type:    TypeNotFound,
		Code:    "ROUTE_NOT_FOUND",
		Message: "Route not found",
	}
}

// NewConflictError creates a 409, typically for inputs that break a unique
// constraint. code is caller-supplied.
func NewConflictError(message, code string) *HTTPError {
	return &HTTPError{
		Status:  http.StatusConflict,
		Type:    TypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates the terminal 400 produced from a schema failure.
// It is always exposed.
func NewValidationError(message string) *HTTPError {
	expose := true

	return &HTTPError{
		Status:  http.StatusBadRequest,
		Type:    TypeValidation,
		Message: message,
		Expose:  &expose,
	}
}

// NewInternalServerError creates a 500. Unless Expose is forced, the error
// handler replaces it with the fallback message.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Type:    TypeInternal,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

// NewFallbackError is the exposed replacement for every masked failure.
func NewFallbackError() *HTTPError {
	expose := true

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: FallbackMessage,
		Expose:  &expose,
	}
}

// NewStatusError creates an HTTPError with an arbitrary status.
//
// A JSON object or array message is handler-owned and becomes the response
// body as-is. Any other 4xx message gets a type derived from the status text
// ("Too Many Requests" -> TOO_MANY_REQUESTS). 5xx errors stay untyped.
func NewStatusError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}

	e := &HTTPError{
		Status:  status,
		Message: message,
	}
	if status < http.StatusInternalServerError && !isJSONDocument(message) {
		e.Type = ErrorType(MakeUpperCaseWithUnderscores(http.StatusText(status)))
	}

	return e
}

func isJSONDocument(s string) bool {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}

	return json.Valid(trimmed)
}
