package middleware

import (
	"context"

	"github.com/cjscheller/serverless-api-framework/internal/validation"
)

// ValidatedKey is the Exchange.Context key of the coerced inbound document
// ({body, headers, pathParameters, queryStringParameters}).
const ValidatedKey = "validated"

// Validator checks the inbound event and the outbound response against their
// schemas. Either schema may be nil.
//
// Type coercion runs before the structural checks. The coerced bodies replace
// Event.Body and, when the response passes, Response.Body. Coerced parameters
// are only available under ValidatedKey since the event keeps them as strings.
func Validator(eventSchema, responseSchema *validation.Schema) Stage {
	stage := Stage{Name: "validator"}

	if eventSchema != nil {
		stage.Before = func(_ context.Context, x *Exchange) error {
			doc := map[string]any{
				"body":                  x.Event.Body,
				"headers":               x.Event.Headers,
				"pathParameters":        x.Event.PathParameters,
				"queryStringParameters": x.Event.QueryStringParameters,
			}

			coerced, causes, err := eventSchema.Validate(doc, validation.OrderOf([]byte(x.Event.RawBody), "/body"))
			if err != nil {
				return err
			}
			if m, ok := coerced.(map[string]any); ok {
				x.Event.Body = m["body"]
				x.Context[ValidatedKey] = m
			}
			if len(causes) > 0 {
				return validation.NewError(causes)
			}

			return nil
		}
	}

	if responseSchema != nil {
		stage.After = func(_ context.Context, x *Exchange) error {
			if x.Response == nil {
				return nil
			}

			doc := map[string]any{
				"statusCode": x.Response.StatusCode,
				"headers":    x.Response.Headers,
				"body":       x.Response.Body,
			}

			coerced, causes, err := responseSchema.Validate(doc, nil)
			if err != nil {
				return err
			}
			if m, ok := coerced.(map[string]any); ok && len(causes) == 0 {
				x.Response.Body = m["body"]
			}
			if len(causes) > 0 {
				return validation.NewError(causes)
			}

			return nil
		}
	}

	return stage
}

// Validated returns the coerced inbound document, when a schema ran.
func Validated(hctx map[string]any) (map[string]any, bool) {
	doc, ok := hctx[ValidatedKey].(map[string]any)

	return doc, ok
}
