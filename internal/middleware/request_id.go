package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the request correlation ID.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the key under which the ID is stored in echo and
	// Exchange contexts.
	RequestIDKey = "request_id"
)

// RequestID assigns the invocation's request ID and scopes the logger to it.
//
// The ID comes from the X-Request-ID header, then the API Gateway request ID,
// then a new UUID.
func RequestID() Stage {
	return Stage{
		Name: "request-id",
		Before: func(_ context.Context, x *Exchange) error {
			requestID := x.Event.Header(RequestIDHeader)
			if requestID == "" {
				requestID = x.Event.RequestID
			}
			if requestID == "" {
				requestID = uuid.New().String()
			}

			x.Event.RequestID = requestID
			x.Context[RequestIDKey] = requestID

			scoped := x.Log().With().
				Str("request_id", requestID).
				Str("method", x.Event.HTTPMethod).
				Str("path", x.Event.Path).
				Logger()
			x.Logger = &scoped

			return nil
		},
	}
}

// RequestIDHeaderStage echoes the request ID on success and error responses.
func RequestIDHeaderStage() Stage {
	echoID := func(_ context.Context, x *Exchange) error {
		if x.Response != nil && x.Event.RequestID != "" {
			x.Response.SetHeader(RequestIDHeader, x.Event.RequestID)
		}

		return nil
	}

	return Stage{
		Name:    "request-id-header",
		After:   echoID,
		OnError: echoID,
	}
}

// EchoRequestID is the local server's request ID middleware. It reuses an
// incoming X-Request-ID or generates one, stores it in the echo context and
// sets it on the request so the pipeline picks the same ID.
func EchoRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(RequestIDHeader, requestID)
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID from the echo context.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}

	return ""
}
