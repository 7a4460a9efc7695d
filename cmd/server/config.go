package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment. Google credentials read the bare
// CLIENT_ID / CLIENT_SECRET variables; Facebook uses FACEBOOK_APP_ID /
// FACEBOOK_APP_SECRET.
type Config struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:secrets.db?cache=shared"`
	ViewsDir    string `env:"VIEWS_DIR" envDefault:"./views"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`

	CookieName   string        `env:"SESSION_COOKIE" envDefault:"secrets_session"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RejectedKey  string        `env:"REJECTED_ROUTE_COOKIE" envDefault:"rejected_route"`
	RejectedPath string        `env:"REJECTED_ROUTE_DEFAULT" envDefault:"/secrets"`

	// Optional: when set, sessions live in Redis instead of process memory.
	RedisAddr string `env:"REDIS_ADDR"`

	// 32 byte keys for the OAuth state envelope.
	StateEncryptionKey string `env:"STATE_ENCRYPTION_KEY"`
	StateHMACKey       string `env:"STATE_HMAC_KEY"`

	GoogleClientID     string `env:"CLIENT_ID"`
	GoogleClientSecret string `env:"CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:3000/auth/google/secrets"`

	FacebookAppID       string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret   string `env:"FACEBOOK_APP_SECRET"`
	FacebookCallbackURL string `env:"FACEBOOK_CALLBACK_URL" envDefault:"http://localhost:3000/auth/facebook/secrets"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) GetCookieName() string {
	return c.CookieName
}

func (c *Config) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

func (c *Config) GetRejectedRouteKey() string {
	return c.RejectedKey
}

func (c *Config) GetRejectedRouteDefault() string {
	return c.RejectedPath
}
