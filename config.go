package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the concrete Config implementation, loaded once from the
// environment at process start and immutable afterwards.
type EnvConfig struct {
	AccessSigningKey  string        `env:"AUTH_ACCESS_SIGNING_KEY,notEmpty"`
	RefreshSigningKey string        `env:"AUTH_REFRESH_SIGNING_KEY,notEmpty"`
	AccessTTL         time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL        time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"168h"`
	Issuer            string        `env:"AUTH_ISSUER"`
	Audience          []string      `env:"AUTH_AUDIENCE" envSeparator:","`
	ClientID          string        `env:"AUTH_IDP_CLIENT_ID"`
}

// LoadEnvConfig parses and validates configuration from the environment.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "failed to parse auth configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the invariants the token contract depends on.
func (c *EnvConfig) Validate() error {
	if c.AccessSigningKey == "" || c.RefreshSigningKey == "" {
		return errors.New("both signing keys must be configured", errors.CategoryValidation)
	}

	// Domain separation is enforced by distinct keys, not by a payload
	// field. Identical keys would let the two token kinds swap roles.
	if c.AccessSigningKey == c.RefreshSigningKey {
		return errors.New("access and refresh signing keys must differ", errors.CategoryValidation)
	}

	return nil
}

func (c *EnvConfig) GetAccessSigningKey() string  { return c.AccessSigningKey }
func (c *EnvConfig) GetRefreshSigningKey() string { return c.RefreshSigningKey }

func (c *EnvConfig) GetAccessTTL() time.Duration {
	if c.AccessTTL <= 0 {
		return DefaultAccessTTL
	}
	return c.AccessTTL
}

func (c *EnvConfig) GetRefreshTTL() time.Duration {
	if c.RefreshTTL <= 0 {
		return DefaultRefreshTTL
	}
	return c.RefreshTTL
}

func (c *EnvConfig) GetIssuer() string     { return c.Issuer }
func (c *EnvConfig) GetAudience() []string { return c.Audience }
func (c *EnvConfig) GetClientID() string   { return c.ClientID }

var _ Config = (*EnvConfig)(nil)
