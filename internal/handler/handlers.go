package handler

import (
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

// Function names, as selected by BOILERPLATE_PRIMARY.FUNCTION in Lambda.
const (
	FunctionLinks          = "links"
	FunctionStatus         = "status"
	FunctionSessionGet     = "session-get"
	FunctionSessionRefresh = "session-refresh"
	FunctionSessionDelete  = "session-delete"
	FunctionPreflight      = "preflight"
)

// Handlers groups every handler so the router and the Lambda entry point
// receive one object.
type Handlers struct {
	Links     *LinksHandler
	Status    *StatusHandler
	Session   *SessionHandler
	Preflight *PreflightHandler
}

func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Links:     NewLinksHandler(s),
		Status:    NewStatusHandler(s),
		Session:   NewSessionHandler(s),
		Preflight: NewPreflightHandler(s),
	}
}

// Functions indexes every function by name.
func (h *Handlers) Functions() map[string]*Function {
	functions := []*Function{
		h.Links.List,
		h.Status.Check,
		h.Session.Get,
		h.Session.Refresh,
		h.Session.Delete,
		h.Preflight.Options,
	}

	byName := make(map[string]*Function, len(functions))
	for _, fn := range functions {
		byName[fn.Name()] = fn
	}

	return byName
}

// Function looks a function up by name.
func (h *Handlers) Function(name string) (*Function, bool) {
	fn, ok := h.Functions()[name]

	return fn, ok
}
