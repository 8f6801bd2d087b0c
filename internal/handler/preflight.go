package handler

import (
	"context"
	"net/http"

	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

// PreflightHandler answers CORS preflight requests. The CORS stage adds the
// allow and caching headers.
type PreflightHandler struct {
	Handler

	Options *Function
}

func NewPreflightHandler(s *server.Server) *PreflightHandler {
	h := &PreflightHandler{Handler: NewHandler(s)}
	h.Options = h.Base(FunctionPreflight, h.preflight, Options{})

	return h
}

func (h *PreflightHandler) preflight(context.Context, *middleware.Event, map[string]any) (*middleware.Response, error) {
	return &middleware.Response{StatusCode: http.StatusNoContent}, nil
}
