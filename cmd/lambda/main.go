// Command lambda serves one function per deployment. The function is chosen
// by BOILERPLATE_PRIMARY.FUNCTION.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/cjscheller/serverless-api-framework/internal/config"
	"github.com/cjscheller/serverless-api-framework/internal/handler"
	"github.com/cjscheller/serverless-api-framework/internal/logger"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize New Relic")
	}

	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &appLogger, loggerService)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	h := handler.NewHandlers(srv)

	fn, ok := h.Function(cfg.Primary.Function)
	if !ok {
		appLogger.Fatal().Str("function", cfg.Primary.Function).Msg("unknown function")
	}

	appLogger.Info().Str("function", fn.Name()).Msg("starting lambda handler")

	lambda.StartWithOptions(fn.Invoke, lambda.WithEnableSIGTERM(loggerService.Shutdown))
}
