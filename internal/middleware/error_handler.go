package middleware

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cjscheller/serverless-api-framework/internal/errs"
	"github.com/cjscheller/serverless-api-framework/internal/validation"
)

// ErrorHandler renders every failure the validation translator does not own.
//
// Unexposed, unclassified and status-less failures become a 500 with the
// fallback message, so internal detail never reaches the client. In test mode nothing is logged.
func ErrorHandler(testMode bool) Stage {
	return Stage{
		Name: "http-error-handler",
		OnError: func(_ context.Context, x *Exchange) error {
			var vErr *validation.Error
			if x.Response != nil || errors.As(x.Error, &vErr) {
				return nil
			}

			var httpErr *errs.HTTPError
			isHTTP := errors.As(x.Error, &httpErr)

			if !testMode {
				logFailure(x.Log(), x.Error, httpErr)
			}

			if !isHTTP || httpErr.Status == 0 || !httpErr.Exposed() {
				httpErr = errs.NewFallbackError()
			}
			x.Error = httpErr

			body, structured := errorBody(httpErr)
			x.Response = &Response{
				StatusCode: httpErr.Status,
				Headers:    mergeHeaders(httpErr.Headers, nil),
				Body:       body,
			}
			// The rendered body decides the content type.
			x.Response.DeleteHeader("Content-Type")

			if structured {
				return Serialize(x.Response, testMode)
			}
			x.Response.SetHeader("Content-Type", "text/plain")

			return nil
		},
	}
}

// errorBody prefers the typed {type, message[, code]} body, then a JSON
// message decoded as-is, then the raw message text.
func errorBody(e *errs.HTTPError) (any, bool) {
	if body := e.Body(); body != nil {
		return body, true
	}

	var parsed any
	if err := json.Unmarshal([]byte(e.Message), &parsed); err == nil {
		switch parsed.(type) {
		case map[string]any, []any:
			return parsed, true
		}
	}

	return e.Message, false
}

func logFailure(log *zerolog.Logger, err error, httpErr *errs.HTTPError) {
	var event *zerolog.Event
	switch {
	case httpErr != nil && httpErr.Exposed():
		event = log.Warn().Int("status", httpErr.Status)
	default:
		event = log.Error().Stack()
	}

	event.Err(err).Msg("request failed")
}

// mergeHeaders copies base and lays override on top.
func mergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	return merged
}
