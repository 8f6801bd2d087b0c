// Package validation validates request and response documents against JSON
// schemas and turns the engine's failures into human-readable messages.
//
// It wraps gojsonschema and reshapes its results into ajv-style causes
// ({keyword, instancePath, params, message}) so messages stay stable no matter
// which engine sits underneath. Two ajv extensions are supported on top of the
// engine: scalar type coercion and the `errorMessage` keyword.
package validation

import (
	"strings"
)

// Cause is a single native failure reported by the schema engine.
//
// InstancePath is a slash-separated pointer into the validated document
// (e.g. "/body/firstName"). For `required` and `additionalProperties` it points
// at the parent object and Params names the offending property.
type Cause struct {
	Keyword      string         `json:"keyword"`
	InstancePath string         `json:"instancePath"`
	Params       map[string]any `json:"params"`
	Message      string         `json:"message"`
}

// Error is raised when a document fails its schema. Causes keep the engine's
// order (made deterministic, see Schema.Validate) and are never interpreted here.
type Error struct {
	Causes []Cause
}

func (e *Error) Error() string {
	if len(e.Causes) == 0 {
		return "validation failed"
	}

	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, strings.TrimSpace(c.InstancePath+" "+c.Message))
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewError wraps causes in a validation failure.
func NewError(causes []Cause) *Error {
	return &Error{Causes: causes}
}
