package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cjscheller/serverless-api-framework/internal/errs"
	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

// SessionHandler exposes the caller's cookie session.
//
// Get and Refresh require a valid session cookie. Delete does not, so an
// expired cookie can still be cleared.
type SessionHandler struct {
	Handler

	Get     *Function
	Refresh *Function
	Delete  *Function
}

func NewSessionHandler(s *server.Server) *SessionHandler {
	h := &SessionHandler{Handler: NewHandler(s)}

	authenticated := Options{
		Middleware: []middleware.Stage{middleware.Auth(s.Auth, s.Auth.CookieName())},
	}

	h.Get = h.Base(FunctionSessionGet, h.get, authenticated)
	h.Refresh = h.Base(FunctionSessionRefresh, h.refresh, authenticated)
	h.Delete = h.Base(FunctionSessionDelete, h.delete, Options{})

	return h
}

func (h *SessionHandler) get(_ context.Context, _ *middleware.Event, hctx map[string]any) (*middleware.Response, error) {
	session, ok := middleware.SessionFrom(hctx)
	if !ok {
		return nil, errs.NewUnauthorizedError()
	}

	return middleware.JSON(http.StatusOK, session), nil
}

// refresh re-signs the verified claims with a fresh expiry.
func (h *SessionHandler) refresh(ctx context.Context, _ *middleware.Event, hctx map[string]any) (*middleware.Response, error) {
	session, ok := middleware.SessionFrom(hctx)
	if !ok {
		return nil, errs.NewUnauthorizedError()
	}

	token, err := h.server.Auth.Sign(session)
	if err != nil {
		return nil, err
	}

	refreshed, err := h.server.Auth.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	resp := middleware.JSON(http.StatusOK, map[string]any{
		"sub":       refreshed.Subject(),
		"expiresAt": expiresAt(refreshed),
	})
	resp.Cookie = h.server.Auth.SerializeCookie(token)

	return resp, nil
}

func (h *SessionHandler) delete(context.Context, *middleware.Event, map[string]any) (*middleware.Response, error) {
	return &middleware.Response{
		StatusCode: http.StatusNoContent,
		Cookie:     h.server.Auth.RemoveCookie(),
	}, nil
}

func expiresAt(session map[string]any) string {
	exp, ok := session["exp"].(float64)
	if !ok {
		return ""
	}

	return time.Unix(int64(exp), 0).UTC().Format(time.RFC3339)
}
