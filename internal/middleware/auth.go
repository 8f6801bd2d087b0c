package middleware

import (
	"context"

	"github.com/cjscheller/serverless-api-framework/internal/auth"
	"github.com/cjscheller/serverless-api-framework/internal/errs"
)

// SessionKey is the Exchange.Context key of the verified session.
const SessionKey = "session"

// Auth requires a valid session cookie.
//
// A missing cookie fails without calling the verifier. A missing or rejected
// token always produces the same 401; the reason is only logged at debug level.
func Auth(verifier auth.Verifier, cookieName string) Stage {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}

	return Stage{
		Name: "auth",
		Before: func(ctx context.Context, x *Exchange) error {
			token, ok := auth.ExtractCookie(x.Event.Header("Cookie"), cookieName)
			if !ok {
				x.Log().Debug().Str("cookie", cookieName).Msg("session cookie missing")
				return errs.NewUnauthorizedError()
			}

			session, err := verifier.Verify(ctx, token)
			if err != nil || session == nil {
				x.Log().Debug().Err(err).Msg("session verification failed")
				return errs.NewUnauthorizedError()
			}

			x.Context[SessionKey] = session
			if sub := session.Subject(); sub != "" {
				enriched := x.Log().With().Str("user_id", sub).Logger()
				x.Logger = &enriched
			}

			return nil
		},
	}
}

// SessionFrom returns the session Auth stored in the handler context.
func SessionFrom(hctx map[string]any) (auth.Session, bool) {
	session, ok := hctx[SessionKey].(auth.Session)

	return session, ok
}
