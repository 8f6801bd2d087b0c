package middleware

import (
	"context"
)

// Serializer JSON-encodes structured response bodies.
func Serializer(testMode bool) Stage {
	return Stage{
		Name: "http-response-serializer",
		After: func(_ context.Context, x *Exchange) error {
			return Serialize(x.Response, testMode)
		},
	}
}

// Serialize sets Content-Type: application/json and encodes a non-string body.
//
// It is idempotent: a response that already carries a content type (in any
// letter case) is left alone. Test mode keeps the body structured.
func Serialize(r *Response, testMode bool) error {
	if r == nil {
		return nil
	}
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	if r.HasHeader("Content-Type") {
		return nil
	}

	r.Headers["Content-Type"] = "application/json"
	if testMode {
		return nil
	}

	switch body := r.Body.(type) {
	case string:
	case nil:
		r.Body = ""
	case []byte:
		r.Body = string(body)
	default:
		encoded, err := encodeJSON(body)
		if err != nil {
			return err
		}
		r.Body = encoded
	}

	return nil
}
