package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderMaxAge           = "Access-Control-Max-Age"

	preflightMaxAge = "86400"
)

// CORS annotates successful and error responses with CORS headers.
//
// Preflight (OPTIONS) responses also get caching headers. On the error path it
// does nothing until an earlier stage has established a response.
func CORS(origins []string) Stage {
	origins = append([]string(nil), origins...)

	annotate := func(_ context.Context, x *Exchange) error {
		if x.Response == nil {
			return nil
		}

		x.Response.SetHeader(HeaderAllowOrigin, AllowedOrigin(origins, requestOrigin(x.Event)))
		x.Response.SetHeader(HeaderAllowCredentials, "true")
		x.Response.SetHeader(HeaderAllowHeaders, "Content-Type")

		if strings.EqualFold(x.Event.HTTPMethod, http.MethodOptions) {
			x.Response.SetHeader(HeaderMaxAge, preflightMaxAge)
			x.Response.SetHeader("Vary", "Origin")
			x.Response.SetHeader("Cache-Control", "public, max-age="+preflightMaxAge)
		}

		return nil
	}

	return Stage{
		Name:    "cors",
		After:   annotate,
		OnError: annotate,
	}
}

// AllowedOrigin picks the Allow-Origin value.
//
// A single configured origin is always returned. With several, a matching
// request origin is echoed and anything else gets the first configured origin.
// This is a fallback, not an allow-list: browsers enforce the mismatch.
func AllowedOrigin(origins []string, origin string) string {
	if len(origins) == 0 {
		return ""
	}
	if len(origins) > 1 && origin != "" && slices.Contains(origins, origin) {
		return origin
	}

	return origins[0]
}

func requestOrigin(e *Event) string {
	if v, ok := e.Headers["Origin"]; ok {
		return v
	}
	if v, ok := e.Headers["origin"]; ok {
		return v
	}

	return e.Header("Origin")
}
