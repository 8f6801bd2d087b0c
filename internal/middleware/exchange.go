package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Event is the inbound request as seen by stages and handlers.
//
// PathParameters and QueryStringParameters may be nil until the Normalizer
// runs. Body holds the raw string until the body parser replaces it with the
// decoded JSON value; RawBody always keeps the original text.
type Event struct {
	HTTPMethod            string
	Path                  string
	Resource              string
	Headers               map[string]string
	PathParameters        map[string]string
	QueryStringParameters map[string]string
	Body                  any
	RawBody               string
	IsBase64Encoded       bool
	RequestID             string
}

// EventFromRequest converts an API Gateway proxy request.
func EventFromRequest(req events.APIGatewayProxyRequest) *Event {
	event := &Event{
		HTTPMethod:            req.HTTPMethod,
		Path:                  req.Path,
		Resource:              req.Resource,
		Headers:               req.Headers,
		PathParameters:        req.PathParameters,
		QueryStringParameters: req.QueryStringParameters,
		RawBody:               req.Body,
		IsBase64Encoded:       req.IsBase64Encoded,
		RequestID:             req.RequestContext.RequestID,
	}
	if req.Body != "" {
		event.Body = req.Body
	}

	return event
}

// Header looks a header up by exact name first, then case-insensitively.
func (e *Event) Header(name string) string {
	return lookupHeader(e.Headers, name)
}

// Response is what a handler returns and what stages decorate.
//
// Body is structured until the serializer stringifies it. A non-empty Cookie
// is turned into a Set-Cookie header.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       any
	Cookie     string
}

// JSON is a shorthand for a structured response.
func JSON(status int, body any) *Response {
	return &Response{StatusCode: status, Body: body}
}

// Header looks a header up by exact name first, then case-insensitively.
func (r *Response) Header(name string) string {
	return lookupHeader(r.Headers, name)
}

// HasHeader reports whether a header is present in any letter case.
func (r *Response) HasHeader(name string) bool {
	for k := range r.Headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}

	return false
}

// DeleteHeader removes every letter-case variant of a header.
func (r *Response) DeleteHeader(name string) {
	for k := range r.Headers {
		if strings.EqualFold(k, name) {
			delete(r.Headers, k)
		}
	}
}

// SetHeader sets a header, creating the map when needed.
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[name] = value
}

// ToProxyResponse renders the response for API Gateway. A body the serializer
// left structured (test mode) is JSON-encoded here.
func (r *Response) ToProxyResponse() (events.APIGatewayProxyResponse, error) {
	out := events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
	}
	if out.StatusCode == 0 {
		out.StatusCode = http.StatusOK
	}

	switch body := r.Body.(type) {
	case nil:
	case string:
		out.Body = body
	case []byte:
		out.Body = string(body)
	default:
		encoded, err := encodeJSON(body)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		out.Body = encoded
	}

	return out, nil
}

// Exchange is the per-invocation state threaded through the pipeline.
type Exchange struct {
	Event    *Event
	Response *Response
	Error    error

	// Context carries values between stages and into the handler
	// (e.g. the verified session under SessionKey).
	Context map[string]any

	Logger *zerolog.Logger
}

func NewExchange(event *Event) *Exchange {
	if event == nil {
		event = &Event{}
	}

	return &Exchange{
		Event:   event,
		Context: map[string]any{},
	}
}

// Log returns the exchange logger or a no-op logger.
func (x *Exchange) Log() *zerolog.Logger {
	if x.Logger != nil {
		return x.Logger
	}

	nop := zerolog.Nop()

	return &nop
}

func lookupHeader(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}

	return ""
}

// encodeJSON marshals like JSON.stringify: no HTML escaping, no trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "failed to encode response body")
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
