package handler

import (
	"context"
	"net/http"

	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

// Link is one entry of the root links document.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// LinksHandler serves the API root: a list of related resources.
type LinksHandler struct {
	Handler

	List *Function
}

func NewLinksHandler(s *server.Server) *LinksHandler {
	h := &LinksHandler{Handler: NewHandler(s)}
	h.List = h.Base(FunctionLinks, h.list, Options{
		ResponseSchema: mustSchema("links_response.json"),
	})

	return h
}

func (h *LinksHandler) list(context.Context, *middleware.Event, map[string]any) (*middleware.Response, error) {
	links := []Link{
		{Rel: "docs", Href: h.server.Config.Primary.DocsURL},
	}

	return middleware.JSON(http.StatusOK, links), nil
}
