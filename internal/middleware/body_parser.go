package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"mime"
	"strings"

	"github.com/cjscheller/serverless-api-framework/internal/errs"
)

const malformedJSONMessage = "Invalid or malformed JSON was provided"

// JSONBodyParser decodes a JSON request body in place.
//
// Bodies are decoded when the content type is JSON (application/json or any
// +json type) or missing. Other content types are left as raw strings.
// Malformed JSON fails with a 422.
func JSONBodyParser() Stage {
	return Stage{
		Name: "json-body-parser",
		Before: func(_ context.Context, x *Exchange) error {
			raw, ok := x.Event.Body.(string)
			if !ok || raw == "" {
				return nil
			}
			if !isJSONContentType(x.Event.Header("Content-Type")) {
				return nil
			}

			if x.Event.IsBase64Encoded {
				decoded, err := base64.StdEncoding.DecodeString(raw)
				if err != nil {
					return errs.NewUnprocessableEntityError(malformedJSONMessage)
				}
				raw = string(decoded)
				x.Event.RawBody = raw
			}

			var body any
			if err := json.Unmarshal([]byte(raw), &body); err != nil {
				x.Log().Debug().Err(err).Msg("request body is not valid JSON")
				return errs.NewUnprocessableEntityError(malformedJSONMessage)
			}
			x.Event.Body = body

			return nil
		},
	}
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
