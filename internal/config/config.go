// Package config loads process-wide configuration from the environment.
//
// Values are read once per cold start, validated, and treated as read-only
// afterwards. Every invocation shares the same *Config.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into structured Go config.
//   - Validate required values so a bad deploy fails on the first invocation.
//   - Provide defaults for optional blocks.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

/*
	Env vars use the BOILERPLATE_ prefix and "." for nesting:

		BOILERPLATE_PRIMARY.ENV=production     -> primary.env
		BOILERPLATE_AUTH.SECRET_KEY=...        -> auth.secret_key
		BOILERPLATE_CORS.ORIGINS=https://a,... -> cors.origins

	The unprefixed CORS_ORIGINS, DASHBOARD_URL and JWT_PRIVATE_KEY are accepted
	as fallbacks; prefixed keys win when both are set.
*/

const prefix = "BOILERPLATE_"

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config is the root configuration object.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server"`
	CORS          CORSConfig           `koanf:"cors"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds the execution mode and, for Lambda, which function to serve.
// DocsURL is advertised by the root links endpoint.
type Primary struct {
	Env      string `koanf:"env" validate:"required,oneof=development test staging production"`
	Function string `koanf:"function"`
	DocsURL  string `koanf:"docs_url" validate:"omitempty,url"`
}

// ServerConfig configures the local development server. Timeouts are seconds.
type ServerConfig struct {
	Port         string `koanf:"port"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout int    `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"gte=0"`
}

// CORSConfig holds the comma-separated allowed origin list.
// DashboardURL is used when Origins is empty.
type CORSConfig struct {
	Origins      string `koanf:"origins"`
	DashboardURL string `koanf:"dashboard_url"`
}

// AuthConfig stores the session signing secret and cookie settings.
type AuthConfig struct {
	SecretKey  string        `koanf:"secret_key" validate:"required"`
	CookieName string        `koanf:"cookie_name"`
	TokenTTL   time.Duration `koanf:"token_ttl" validate:"gte=0"`
}

// AllowedOrigins splits the configured origin list. It never returns nil.
func (c CORSConfig) AllowedOrigins() []string {
	raw := c.Origins
	if raw == "" {
		raw = c.DashboardURL
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		origins = append(origins, strings.TrimSpace(p))
	}

	return origins
}

// IsTest reports whether responses should skip body serialization and errors
// should not be logged.
func (c *Config) IsTest() bool {
	return c.Primary.Env == EnvTest
}

// IsDevelopment reports whether cookies may be issued without Secure.
func (c *Config) IsDevelopment() bool {
	return c.Primary.Env == EnvDevelopment
}

// LoadConfig reads, validates and defaults the configuration.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider("", ".", legacyKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load fallback env variables")
	}

	err = k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load env variables")
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal main config")
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid observability config")
	}

	return mainConfig, nil
}

// legacyKey maps the unprefixed variables kept for existing deployments.
// Any other variable is dropped.
func legacyKey(s string) string {
	switch s {
	case "CORS_ORIGINS":
		return "cors.origins"
	case "DASHBOARD_URL":
		return "cors.dashboard_url"
	case "JWT_PRIVATE_KEY":
		return "auth.secret_key"
	}

	return ""
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}

	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "SESSION"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = "serverless-api"
	c.Observability.Environment = c.Primary.Env
}
