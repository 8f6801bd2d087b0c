package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const DefaultTokenTTL = 24 * time.Hour

// JWT signs and verifies HS256 session tokens and builds the matching cookies.
type JWT struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

type JWTOption func(*JWT)

func WithTTL(ttl time.Duration) JWTOption {
	return func(j *JWT) {
		if ttl > 0 {
			j.ttl = ttl
		}
	}
}

func WithCookieName(name string) JWTOption {
	return func(j *JWT) {
		if name != "" {
			j.cookieName = name
		}
	}
}

// WithSecureCookie toggles the Secure cookie attribute (off for local development).
func WithSecureCookie(secure bool) JWTOption {
	return func(j *JWT) {
		j.secure = secure
	}
}

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWT) {
		j.now = now
	}
}

func NewJWT(secret string, opts ...JWTOption) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	j := &JWT{
		secret:     []byte(secret),
		ttl:        DefaultTokenTTL,
		cookieName: DefaultCookieName,
		secure:     true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

func (j *JWT) CookieName() string {
	return j.cookieName
}

// Sign issues a token for session. Any existing iat/exp claims are replaced,
// so signing a verified session refreshes it.
func (j *JWT) Sign(session Session) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range session {
		claims[k] = v
	}

	now := j.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(j.ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure wraps ErrInvalidToken.
func (j *JWT) Verify(_ context.Context, token string) (Session, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	return Session(claims), nil
}

// SerializeCookie renders a Set-Cookie value carrying token.
func (j *JWT) SerializeCookie(token string) string {
	cookie := &http.Cookie{
		Name:     j.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(j.ttl.Seconds()),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}

	return cookie.String()
}

// RemoveCookie renders a Set-Cookie value that expires the session cookie.
func (j *JWT) RemoveCookie() string {
	cookie := &http.Cookie{
		Name:    j.cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	}

	return cookie.String()
}
