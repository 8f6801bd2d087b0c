// Package router builds the local development server: an echo instance that
// turns HTTP requests into API Gateway proxy events and replays them through
// the same functions Lambda runs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cjscheller/serverless-api-framework/internal/handler"
	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id must exist before the logger is built,
	// and tracing must wrap everything that can fail.
	router.Use(
		middleware.EchoRequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerSessionRoutes(router, h)

	return router
}
