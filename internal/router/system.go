package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cjscheller/serverless-api-framework/internal/handler"
)

func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", Adapt(h.Links.List))
	r.OPTIONS("/", Adapt(h.Preflight.Options))

	r.GET("/status", Adapt(h.Status.Check))
	r.OPTIONS("/status", Adapt(h.Preflight.Options))
}

func registerSessionRoutes(r *echo.Echo, h *handler.Handlers) {
	session := r.Group("/session")

	session.GET("", Adapt(h.Session.Get))
	session.POST("", Adapt(h.Session.Refresh))
	session.DELETE("", Adapt(h.Session.Delete))
	session.OPTIONS("", Adapt(h.Preflight.Options))
}
