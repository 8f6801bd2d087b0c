// Package auth verifies and issues cookie-borne session tokens.
//
// The pipeline only depends on Verifier; JWT is the provider used by the
// bundled handlers.
package auth

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// DefaultCookieName is the cookie that carries the session token.
const DefaultCookieName = "SESSION"

// ErrInvalidToken is returned (wrapped) for every rejected token.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the verified token payload.
type Session map[string]any

// Subject returns the "sub" claim, or "" when absent.
func (s Session) Subject() string {
	sub, _ := s["sub"].(string)

	return sub
}

// Verifier turns a raw token into a Session or fails.
type Verifier interface {
	Verify(ctx context.Context, token string) (Session, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Session, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Session, error) {
	return f(ctx, token)
}

// ExtractCookie returns the value of the named cookie from a raw Cookie header.
// Malformed pairs are skipped; an empty value counts as absent.
func ExtractCookie(header, name string) (string, bool) {
	if header == "" {
		return "", false
	}

	req := &http.Request{Header: http.Header{"Cookie": {header}}}
	cookie, err := req.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}
