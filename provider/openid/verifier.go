package openid

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgertide/go-auth"
)

// Config holds the trust anchors for assertion verification.
type Config struct {
	// Issuer is the trusted identity provider, e.g. "https://accounts.example.com".
	Issuer string
	// ClientID is this service's registered client identity. Assertions
	// whose audience does not include it are rejected.
	ClientID string
	// JWKSURL overrides the derived "<issuer>/.well-known/jwks.json".
	JWKSURL string
	// RefreshInterval controls background JWKS refresh. Zero uses an hour.
	RefreshInterval time.Duration
	// Keyfunc overrides JWKS resolution entirely. Intended for tests and
	// for issuers already resolved elsewhere.
	Keyfunc jwt.Keyfunc
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return strings.TrimSuffix(c.Issuer, "/") + "/.well-known/jwks.json"
}

// Verifier validates assertion tokens issued by a single trusted issuer.
// It implements auth.AssertionVerifier.
type Verifier struct {
	config  Config
	keyfunc jwt.Keyfunc
}

// NewVerifier creates an assertion verifier for the configured issuer.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("openid: client ID is required")
	}

	kf := cfg.Keyfunc
	if kf == nil {
		if cfg.Issuer == "" {
			return nil, fmt.Errorf("openid: issuer is required")
		}

		issuerURL, err := url.Parse(cfg.Issuer)
		if err != nil || issuerURL.Scheme == "" || issuerURL.Host == "" {
			return nil, fmt.Errorf("openid: invalid issuer URL: %s", cfg.Issuer)
		}

		refreshInterval := cfg.RefreshInterval
		if refreshInterval == 0 {
			refreshInterval = time.Hour
		}

		jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
			RefreshErrorHandler: func(err error) {
				log.Printf("openid: background JWKS refresh failed: %s", err)
			},
			RefreshInterval:   refreshInterval,
			RefreshRateLimit:  time.Minute * 5,
			RefreshTimeout:    time.Second * 10,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("openid: failed to resolve JWKS: %w", err)
		}

		kf = jwks.Keyfunc
	}

	return &Verifier{
		config:  cfg,
		keyfunc: kf,
	}, nil
}

type assertionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify implements auth.AssertionVerifier. Signature, issuer, audience,
// and expiry failures collapse to one opaque error; the underlying cause is
// retained as metadata for logging only.
func (v *Verifier) Verify(ctx context.Context, assertion string) (*auth.VerifiedIdentity, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithAudience(v.config.ClientID),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.config.Issuer))
	}

	claims := &assertionClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, v.keyfunc, parserOptions...)
	if err != nil {
		return nil, rejected(err)
	}
	if !token.Valid {
		return nil, rejected(nil)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, rejected(fmt.Errorf("assertion missing required claims"))
	}

	return &auth.VerifiedIdentity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
	}, nil
}

var _ auth.AssertionVerifier = (*Verifier)(nil)

func rejected(cause error) error {
	clone := auth.ErrAuthenticationFailed.Clone()
	if clone == nil {
		return auth.ErrAuthenticationFailed
	}
	if cause != nil {
		clone.Source = cause
		return clone.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return clone
}
