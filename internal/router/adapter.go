package router

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cjscheller/serverless-api-framework/internal/handler"
	"github.com/cjscheller/serverless-api-framework/internal/middleware"
)

// Adapt serves fn on an echo route the way API Gateway would invoke it.
func Adapt(fn *handler.Function) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := ToProxyRequest(c)
		if err != nil {
			return err
		}

		resp, err := fn.Invoke(c.Request().Context(), req)
		if err != nil {
			return err
		}

		return WriteProxyResponse(c, resp)
	}
}

// ToProxyRequest builds the proxy event for the current request. Repeated
// headers and query parameters keep their first value in the single-value
// maps and every value in the multi-value maps. Non-UTF-8 bodies are
// base64-encoded.
func ToProxyRequest(c echo.Context) (events.APIGatewayProxyRequest, error) {
	r := c.Request()

	req := events.APIGatewayProxyRequest{
		Resource:                        c.Path(),
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         map[string]string{},
		MultiValueHeaders:               map[string][]string{},
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetRequestID(c),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: c.RealIP(), UserAgent: r.UserAgent()},
		},
	}

	for name, values := range r.Header {
		req.Headers[name] = values[0]
		req.MultiValueHeaders[name] = values
	}
	if r.Host != "" {
		req.Headers["Host"] = r.Host
	}

	for name, values := range r.URL.Query() {
		req.QueryStringParameters[name] = values[0]
		req.MultiValueQueryStringParameters[name] = values
	}

	if names := c.ParamNames(); len(names) > 0 {
		req.PathParameters = make(map[string]string, len(names))
		for i, name := range names {
			req.PathParameters[name] = c.ParamValues()[i]
		}
	}

	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return events.APIGatewayProxyRequest{}, errors.Wrap(err, "failed to read request body")
		}
		if utf8.Valid(raw) {
			req.Body = string(raw)
		} else {
			req.Body = base64.StdEncoding.EncodeToString(raw)
			req.IsBase64Encoded = true
		}
	}

	return req, nil
}

// WriteProxyResponse writes a proxy response to the echo response.
func WriteProxyResponse(c echo.Context, resp events.APIGatewayProxyResponse) error {
	header := c.Response().Header()
	for name, value := range resp.Headers {
		header.Set(name, value)
	}
	for name, values := range resp.MultiValueHeaders {
		for _, value := range values {
			header.Add(name, value)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return errors.Wrap(err, "failed to decode response body")
		}
		body = decoded
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if len(body) == 0 || status == http.StatusNoContent || status == http.StatusNotModified {
		return c.NoContent(status)
	}

	contentType := header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return c.Blob(status, strings.TrimSpace(contentType), body)
}
