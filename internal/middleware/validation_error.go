package middleware

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/cjscheller/serverless-api-framework/internal/errs"
	"github.com/cjscheller/serverless-api-framework/internal/validation"
)

// ValidationErrorTranslator turns a schema failure into a terminal 400
// {type: VALIDATION_ERROR, message}. Other failures pass through untouched.
func ValidationErrorTranslator(testMode bool) Stage {
	return Stage{
		Name: "validation-error",
		OnError: func(_ context.Context, x *Exchange) error {
			var vErr *validation.Error
			if x.Response != nil || !errors.As(x.Error, &vErr) {
				return nil
			}

			httpErr := errs.NewValidationError(validation.Message(vErr.Causes))
			x.Log().Info().
				Str("message", httpErr.Message).
				Interface("causes", vErr.Causes).
				Msg("request failed validation")

			x.Error = httpErr
			x.Response = &Response{
				StatusCode: http.StatusBadRequest,
				Headers:    mergeHeaders(httpErr.Headers, nil),
				Body:       httpErr.Body(),
			}

			return Serialize(x.Response, testMode)
		},
	}
}
