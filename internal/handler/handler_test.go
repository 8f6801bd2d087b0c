package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjscheller/serverless-api-framework/internal/auth"
	"github.com/cjscheller/serverless-api-framework/internal/config"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: config.EnvTest, DocsURL: "https://docs.example.com"},
		CORS:    config.CORSConfig{Origins: "https://app.example.com"},
		Auth: config.AuthConfig{
			SecretKey:  "test-secret",
			CookieName: auth.DefaultCookieName,
			TokenTTL:   time.Hour,
		},
	}

	log := zerolog.Nop()
	s, err := server.New(cfg, &log, nil)
	require.NoError(t, err)

	return s
}

func invoke(t *testing.T, fn *Function, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, map[string]any) {
	t.Helper()

	resp, err := fn.Invoke(context.Background(), req)
	require.NoError(t, err)

	var body map[string]any
	if resp.Body != "" && resp.Body[0] == '{' {
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	}

	return resp, body
}

func sessionCookie(t *testing.T, s *server.Server, subject string) string {
	t.Helper()

	token, err := s.Auth.Sign(auth.Session{"sub": subject})
	require.NoError(t, err)

	return auth.DefaultCookieName + "=" + token
}

func TestLinks(t *testing.T) {
	t.Parallel()

	h := NewHandlers(newTestServer(t))

	resp, err := h.Links.List.Invoke(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"rel":"docs","href":"https://docs.example.com"}]`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "https://app.example.com", resp.Headers["Access-Control-Allow-Origin"])
	assert.NotEmpty(t, resp.Headers["X-Request-ID"])
}

type stubProvider struct {
	signErr error
}

func (p stubProvider) Sign(auth.Session) (string, error) {
	if p.signErr != nil {
		return "", p.signErr
	}
	return "token", nil
}

func (p stubProvider) Verify(context.Context, string) (auth.Session, error) {
	return auth.Session{"sub": probeSubject}, nil
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		provider   sessionProvider
		query      map[string]string
		expStatus  int
		expHealthy bool
		expChecks  bool
		expMessage string
	}{
		{
			name:       "ok/healthy",
			expStatus:  http.StatusOK,
			expHealthy: true,
		},
		{
			name:       "ok/verbose_coerced",
			query:      map[string]string{"verbose": "true"},
			expStatus:  http.StatusOK,
			expHealthy: true,
			expChecks:  true,
		},
		{
			name:      "err/provider_failure",
			provider:  stubProvider{signErr: errors.New("no key")},
			query:     map[string]string{"verbose": "true"},
			expStatus: http.StatusServiceUnavailable,
			expChecks: true,
		},
		{
			name:       "err/unknown_query_parameter",
			query:      map[string]string{"deep": "1"},
			expStatus:  http.StatusBadRequest,
			expMessage: "Request must not include additional properties (`deep`)",
		},
		{
			name:       "err/verbose_not_boolean",
			query:      map[string]string{"verbose": "maybe"},
			expStatus:  http.StatusBadRequest,
			expMessage: "`verbose` must be of type boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewStatusHandler(newTestServer(t))
			if tt.provider != nil {
				h.provider = tt.provider
			}

			resp, body := invoke(t, h.Check, events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodGet,
				Path:                  "/status",
				QueryStringParameters: tt.query,
			})

			assert.Equal(t, tt.expStatus, resp.StatusCode)
			if tt.expMessage != "" {
				assert.Equal(t, "VALIDATION_ERROR", body["type"])
				assert.Equal(t, tt.expMessage, body["message"])
				return
			}

			if tt.expHealthy {
				assert.Equal(t, "healthy", body["status"])
			} else {
				assert.Equal(t, "unhealthy", body["status"])
			}
			assert.Equal(t, config.EnvTest, body["environment"])

			checks, ok := body["checks"].(map[string]any)
			assert.Equal(t, tt.expChecks, ok)
			if ok {
				authCheck := checks["auth"].(map[string]any)
				assert.Equal(t, body["status"], authCheck["status"])
			}
		})
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := NewSessionHandler(s)

	t.Run("err/get_without_cookie", func(t *testing.T) {
		t.Parallel()

		resp, body := invoke(t, h.Get, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/session"})

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, map[string]any{"type": "UNAUTHORIZED", "message": "Unauthorized"}, body)
	})

	t.Run("err/get_with_forged_cookie", func(t *testing.T) {
		t.Parallel()

		resp, body := invoke(t, h.Get, events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Path:       "/session",
			Headers:    map[string]string{"Cookie": "SESSION=eyJhbGciOiJub25lIn0.e30."},
		})

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", body["message"])
	})

	t.Run("ok/get", func(t *testing.T) {
		t.Parallel()

		resp, body := invoke(t, h.Get, events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Path:       "/session",
			Headers:    map[string]string{"cookie": sessionCookie(t, s, "user-42")},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-42", body["sub"])
		assert.Contains(t, body, "exp")
	})

	t.Run("ok/refresh_sets_cookie", func(t *testing.T) {
		t.Parallel()

		resp, body := invoke(t, h.Refresh, events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       "/session",
			Headers:    map[string]string{"Cookie": sessionCookie(t, s, "user-42")},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-42", body["sub"])
		assert.NotEmpty(t, body["expiresAt"])

		cookie := resp.Headers["Set-Cookie"]
		assert.Contains(t, cookie, "SESSION=")
		assert.Contains(t, cookie, "HttpOnly")
		assert.Contains(t, cookie, "SameSite=Strict")
	})

	t.Run("ok/delete_without_session", func(t *testing.T) {
		t.Parallel()

		resp, err := h.Delete.Invoke(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodDelete,
			Path:       "/session",
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Contains(t, resp.Headers["Set-Cookie"], "SESSION=;")
		assert.Contains(t, resp.Headers["Set-Cookie"], "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	})
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	h := NewPreflightHandler(newTestServer(t))

	resp, err := h.Options.Invoke(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodOptions,
		Path:       "/session",
		Headers:    map[string]string{"Origin": "https://app.example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "86400", resp.Headers["Access-Control-Max-Age"])
	assert.Equal(t, "Origin", resp.Headers["Vary"])
}

func TestFunctions(t *testing.T) {
	t.Parallel()

	h := NewHandlers(newTestServer(t))

	functions := h.Functions()
	assert.Len(t, functions, 6)
	for name, fn := range functions {
		assert.Equal(t, name, fn.Name())
	}

	_, ok := h.Function(FunctionStatus)
	assert.True(t, ok)
	_, ok = h.Function("users-create")
	assert.False(t, ok)
}

func TestInvokeCancelled(t *testing.T) {
	t.Parallel()

	h := NewStatusHandler(newTestServer(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Check.Invoke(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	assert.ErrorIs(t, err, context.Canceled)
}
