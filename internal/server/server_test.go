package server

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjscheller/serverless-api-framework/internal/config"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: env},
		Server:  config.ServerConfig{Port: "0"},
		Auth:    config.AuthConfig{SecretKey: "secret", CookieName: "SESSION"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	log := zerolog.Nop()
	s, err := New(testConfig(config.EnvDevelopment), &log, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Auth)
	assert.NotContains(t, s.Auth.SerializeCookie("t"), "Secure")

	prod, err := New(testConfig(config.EnvProduction), &log, nil)
	require.NoError(t, err)
	assert.Contains(t, prod.Auth.SerializeCookie("t"), "Secure")
}

func TestNewRequiresSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.EnvTest)
	cfg.Auth.SecretKey = ""

	log := zerolog.Nop()
	_, err := New(cfg, &log, nil)
	assert.Error(t, err)
}

func TestStartWithoutSetup(t *testing.T) {
	t.Parallel()

	log := zerolog.Nop()
	s, err := New(testConfig(config.EnvTest), &log, nil)
	require.NoError(t, err)

	assert.Error(t, s.Start())
	assert.NoError(t, s.Shutdown(context.Background()))
}
