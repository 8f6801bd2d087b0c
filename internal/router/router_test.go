package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjscheller/serverless-api-framework/internal/auth"
	"github.com/cjscheller/serverless-api-framework/internal/config"
	"github.com/cjscheller/serverless-api-framework/internal/handler"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

func newTestRouter(t *testing.T) (*echo.Echo, *server.Server) {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: config.EnvTest},
		CORS:    config.CORSConfig{Origins: "https://app.example.com,https://admin.example.com"},
		Auth:    config.AuthConfig{SecretKey: "router-secret", CookieName: auth.DefaultCookieName, TokenTTL: time.Hour},
	}

	log := zerolog.Nop()
	s, err := server.New(cfg, &log, nil)
	require.NoError(t, err)

	return NewRouter(s, handler.NewHandlers(s)), s
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	e, s := newTestRouter(t)

	token, err := s.Auth.Sign(auth.Session{"sub": "user-7"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		method    string
		target    string
		headers   map[string]string
		expStatus int
		expBody   string
		checkFn   func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:      "ok/links",
			method:    http.MethodGet,
			target:    "/",
			expStatus: http.StatusOK,
			expBody:   `[{"rel":"docs","href":""}]`,
		},
		{
			name:      "ok/preflight",
			method:    http.MethodOptions,
			target:    "/status",
			headers:   map[string]string{"Origin": "https://admin.example.com"},
			expStatus: http.StatusNoContent,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			},
		},
		{
			name:      "ok/session",
			method:    http.MethodGet,
			target:    "/session",
			headers:   map[string]string{"Cookie": "SESSION=" + token},
			expStatus: http.StatusOK,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), `"sub":"user-7"`)
			},
		},
		{
			name:      "ok/session_refresh",
			method:    http.MethodPost,
			target:    "/session",
			headers:   map[string]string{"Cookie": "SESSION=" + token},
			expStatus: http.StatusOK,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.True(t, strings.HasPrefix(rec.Header().Get("Set-Cookie"), "SESSION="))
			},
		},
		{
			name:      "err/session_without_cookie",
			method:    http.MethodGet,
			target:    "/session",
			expStatus: http.StatusUnauthorized,
			expBody:   `{"type":"UNAUTHORIZED","message":"Unauthorized"}`,
		},
		{
			name:      "err/unknown_route",
			method:    http.MethodGet,
			target:    "/users/1",
			expStatus: http.StatusNotFound,
			expBody:   `{"type":"NOT_FOUND","code":"ROUTE_NOT_FOUND","message":"Route not found"}`,
		},
		{
			name:      "ok/request_id_echoed",
			method:    http.MethodGet,
			target:    "/status",
			headers:   map[string]string{"X-Request-ID": "trace-me"},
			expStatus: http.StatusOK,
			checkFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "trace-me", rec.Header().Get("X-Request-ID"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.target, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expStatus, rec.Code)
			if tt.expBody != "" {
				assert.JSONEq(t, tt.expBody, rec.Body.String())
			}
			if tt.checkFn != nil {
				tt.checkFn(t, rec)
			}
		})
	}
}

func TestToProxyRequest(t *testing.T) {
	t.Parallel()

	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/users/42?tag=a&tag=b", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")

	out, err := ToProxyRequest(c)
	require.NoError(t, err)

	assert.Equal(t, "/users/:id", out.Resource)
	assert.Equal(t, "/users/42", out.Path)
	assert.Equal(t, map[string]string{"id": "42"}, out.PathParameters)
	assert.Equal(t, "a", out.QueryStringParameters["tag"])
	assert.Equal(t, []string{"a", "b"}, out.MultiValueQueryStringParameters["tag"])
	assert.Equal(t, "application/json", out.Headers["Content-Type"])
	assert.Equal(t, `{"name":"x"}`, out.Body)
	assert.False(t, out.IsBase64Encoded)
}

func TestToProxyRequestBinaryBody(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("\xff\xfe"))
	c := e.NewContext(req, httptest.NewRecorder())

	out, err := ToProxyRequest(c)
	require.NoError(t, err)

	assert.True(t, out.IsBase64Encoded)
	assert.Equal(t, "//4=", out.Body)
}

func TestWriteProxyResponse(t *testing.T) {
	t.Parallel()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := WriteProxyResponse(c, events.APIGatewayProxyResponse{
		StatusCode: http.StatusCreated,
		Headers:    map[string]string{"Content-Type": "application/json", "X-Custom": "1"},
		Body:       `{"ok":true}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Custom"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
}
