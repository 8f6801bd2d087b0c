package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cjscheller/serverless-api-framework/internal/auth"
	"github.com/cjscheller/serverless-api-framework/internal/middleware"
	"github.com/cjscheller/serverless-api-framework/internal/server"
)

// probeSubject is the subject of the token the auth check round-trips.
const probeSubject = "status-probe"

type sessionProvider interface {
	auth.Verifier
	Sign(session auth.Session) (string, error)
}

// StatusHandler reports whether the function can serve traffic.
//
// The only in-process dependency is the session provider, so the check signs
// and verifies a probe token. Pass ?verbose=true for per-check detail.
type StatusHandler struct {
	Handler

	provider sessionProvider
	Check    *Function
}

func NewStatusHandler(s *server.Server) *StatusHandler {
	h := &StatusHandler{Handler: NewHandler(s)}
	if s.Auth != nil {
		h.provider = s.Auth
	}
	h.Check = h.Base(FunctionStatus, h.check, Options{
		EventSchema: mustSchema("status_event.json"),
	})

	return h
}

func (h *StatusHandler) check(ctx context.Context, _ *middleware.Event, hctx map[string]any) (*middleware.Response, error) {
	start := time.Now()

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   start.UTC(),
		"environment": h.server.Config.Primary.Env,
	}

	authStart := time.Now()
	authCheck := map[string]any{"status": "healthy"}
	err := h.probe(ctx)
	authCheck["response_time"] = time.Since(authStart).String()

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
		authCheck["status"] = "unhealthy"
		authCheck["error"] = err.Error()

		h.recordFailure(ctx, "auth", err, time.Since(authStart))
	}

	if verbose(hctx) {
		response["checks"] = map[string]any{"auth": authCheck}
	}

	return middleware.JSON(status, response), nil
}

func (h *StatusHandler) probe(ctx context.Context) error {
	if h.provider == nil {
		return errors.New("session provider not configured")
	}

	token, err := h.provider.Sign(auth.Session{"sub": probeSubject})
	if err != nil {
		return err
	}

	session, err := h.provider.Verify(ctx, token)
	if err != nil {
		return err
	}
	if session.Subject() != probeSubject {
		return errors.Errorf("probe subject mismatch: %q", session.Subject())
	}

	return nil
}

func (h *StatusHandler) recordFailure(ctx context.Context, check string, err error, elapsed time.Duration) {
	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("check_type", check).
		Dur("response_time", elapsed).
		Msg("status check failed")

	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "status_check",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}

// verbose reads the coerced ?verbose flag.
func verbose(hctx map[string]any) bool {
	doc, ok := middleware.Validated(hctx)
	if !ok {
		return false
	}
	query, _ := doc["queryStringParameters"].(map[string]any)
	v, _ := query["verbose"].(bool)

	return v
}
