package handler

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/cjscheller/serverless-api-framework/internal/logger"
	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
	"github.com/cjscheller/serverless-api-framework/internal/validation"
)

// Handler holds the shared dependencies every concrete handler embeds.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Options configures the pipeline around one function.
type Options struct {
	// Middleware runs after normalization and before inbound validation,
	// typically middleware.Auth.
	Middleware []middleware.Stage

	EventSchema    *validation.Schema
	ResponseSchema *validation.Schema
}

// Function is a handler wrapped in its pipeline.
type Function struct {
	name   string
	chain  *middleware.Chain
	fn     middleware.Handler
	server *server.Server
}

// Base wraps fn with the standard stages:
//
//	before:  request id, JSON body, normalize, opts.Middleware, validate inbound
//	after:   validate outbound, CORS, request id header, cookie, serialize
//	onError: validation translation, error normalization, CORS, request id header
func (h Handler) Base(name string, fn middleware.Handler, opts Options) *Function {
	testMode := h.server.Config.IsTest()

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.JSONBodyParser(),
		middleware.Normalizer(),
	)
	chain.Use(opts.Middleware...)
	if opts.EventSchema != nil || opts.ResponseSchema != nil {
		chain.Use(middleware.Validator(opts.EventSchema, opts.ResponseSchema))
	}
	chain.Use(
		middleware.ValidationErrorTranslator(testMode),
		middleware.ErrorHandler(testMode),
		middleware.CORS(h.server.Config.CORS.AllowedOrigins()),
		middleware.RequestIDHeaderStage(),
		middleware.SetCookie(),
		middleware.Serializer(testMode),
	)

	return &Function{
		name:   name,
		chain:  chain,
		fn:     fn,
		server: h.server,
	}
}

func (f *Function) Name() string {
	return f.name
}

// Invoke is the Lambda entry point.
//
// An error is only returned for failures no stage turned into a response
// (cancellation, broken onError hooks); API Gateway answers those with 502.
func (f *Function) Invoke(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	x, err := f.Handle(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return x.Response.ToProxyResponse()
}

// Handle runs the pipeline and returns the finished exchange.
func (f *Function) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (*middleware.Exchange, error) {
	start := time.Now()

	// Reuse the transaction the local server's nrecho middleware started.
	txn := newrelic.FromContext(ctx)
	if txn == nil && f.server.LoggerService != nil {
		if app := f.server.LoggerService.GetApplication(); app != nil {
			txn = app.StartTransaction(f.name)
			defer txn.End()
			ctx = newrelic.NewContext(ctx, txn)
		}
	}
	if txn != nil {
		txn.AddAttribute("function.name", f.name)
		txn.AddAttribute("http.method", req.HTTPMethod)
	}

	base := zerolog.Ctx(ctx)
	if base.GetLevel() == zerolog.Disabled && f.server.Logger != nil {
		base = f.server.Logger
	}
	log := base.With().Str("function", f.name).Logger()
	if txn != nil {
		log = logger.WithTraceContext(log, txn)
	}

	x := middleware.NewExchange(middleware.EventFromRequest(req))
	x.Logger = &log

	err := f.chain.Run(ctx, f.fn, x)
	duration := time.Since(start)

	if err != nil {
		x.Log().Error().
			Err(err).
			Dur("duration", duration).
			Msg("invocation failed without a response")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}

		return x, err
	}

	x.Log().Info().
		Int("status", x.Response.StatusCode).
		Dur("duration", duration).
		Msg("invocation completed")

	if txn != nil {
		txn.AddAttribute("http.status_code", x.Response.StatusCode)
		txn.AddAttribute("total.duration_ms", duration.Milliseconds())
		if x.Error != nil && x.Response.StatusCode >= 500 {
			txn.NoticeError(nrpkgerrors.Wrap(x.Error))
		}
	}

	return x, nil
}
