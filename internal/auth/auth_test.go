package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewJWT(testSecret)
	require.NoError(t, err)

	token, err := j.Sign(Session{"sub": "user-1", "role": "admin"})
	require.NoError(t, err)

	session, err := j.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.Subject())
	assert.Equal(t, "admin", session["role"])
	assert.Contains(t, session, "exp")
}

func TestJWTVerifyRejects(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer, err := NewJWT(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	valid, err := signer.Sign(Session{"sub": "user-1"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "exp": issuedAt.Add(time.Hour).Unix()})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","exp":9999999999}`)) + "." + parts[2]

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{"err/garbled", "not-a-token", issuedAt},
		{"err/empty", "", issuedAt},
		{"err/expired", valid, issuedAt.Add(25 * time.Hour)},
		{"err/tampered", tampered, issuedAt},
		{"err/alg_none", noneToken, issuedAt},
		{"err/missing_exp", noExp, issuedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verifier, err := NewJWT(testSecret, WithClock(fixedClock(tt.now)))
			require.NoError(t, err)

			_, err = verifier.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}

	other, err := NewJWT("other-secret", WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)
	_, err = other.Verify(context.Background(), valid)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTSignRefreshesExpiry(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j, err := NewJWT(testSecret, WithClock(fixedClock(start)))
	require.NoError(t, err)

	refreshed, err := j.Sign(Session{"sub": "u", "exp": float64(1), "iat": float64(1)})
	require.NoError(t, err)

	session, err := j.Verify(context.Background(), refreshed)
	require.NoError(t, err)
	assert.Equal(t, float64(start.Add(DefaultTokenTTL).Unix()), session["exp"])
}

func TestNewJWTRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWT("")
	assert.Error(t, err)
}

func TestCookies(t *testing.T) {
	t.Parallel()

	j, err := NewJWT(testSecret)
	require.NoError(t, err)

	set := j.SerializeCookie("abc")
	assert.True(t, strings.HasPrefix(set, "SESSION=abc"))
	assert.Contains(t, set, "Path=/")
	assert.Contains(t, set, "Max-Age=86400")
	assert.Contains(t, set, "HttpOnly")
	assert.Contains(t, set, "Secure")
	assert.Contains(t, set, "SameSite=Strict")

	dev, err := NewJWT(testSecret, WithSecureCookie(false), WithCookieName("DEV"))
	require.NoError(t, err)
	assert.NotContains(t, dev.SerializeCookie("abc"), "Secure")
	assert.Equal(t, "DEV", dev.CookieName())

	removed := j.RemoveCookie()
	assert.True(t, strings.HasPrefix(removed, "SESSION="))
	assert.Contains(t, removed, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
}

func TestExtractCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		exp    string
		found  bool
	}{
		{"ok/single", "SESSION=abc", "abc", true},
		{"ok/among_others", "theme=dark; SESSION=abc; lang=en", "abc", true},
		{"err/missing", "theme=dark", "", false},
		{"err/empty_header", "", "", false},
		{"err/empty_value", "SESSION=", "", false},
		{"ok/garbage_pair_skipped", "garbage; SESSION=abc", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, found := ExtractCookie(tt.header, DefaultCookieName)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.exp, got)
		})
	}
}
