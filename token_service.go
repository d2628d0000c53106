package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultAccessTTL and DefaultRefreshTTL apply when the config leaves the
// corresponding duration unset.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenService mints and verifies the two token kinds. Each kind has its own
// signing key; a token minted in one domain can never verify in the other,
// regardless of payload contents.
type TokenService struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithTokenLogger overrides the default logger.
func WithTokenLogger(l Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if l != nil {
			ts.logger = l
		}
	}
}

// WithClock overrides the time source used when minting and verifying.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, opts ...TokenServiceOption) *TokenService {
	accessTTL := cfg.GetAccessTTL()
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}

	refreshTTL := cfg.GetRefreshTTL()
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	ts := &TokenService{
		accessKey:  []byte(cfg.GetAccessSigningKey()),
		refreshKey: []byte(cfg.GetRefreshSigningKey()),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// AccessTTL exposes the configured access token lifetime.
func (ts *TokenService) AccessTTL() time.Duration {
	return ts.accessTTL
}

// RefreshTTL exposes the configured refresh token lifetime.
func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}

// Now reads the service's time source, which WithClock can override.
// Callers computing expiries must use this rather than time.Now so the
// numbers line up with the minted claims.
func (ts *TokenService) Now() time.Time {
	return ts.now()
}

// MintAccess signs an identity claim under the access signing key with an
// absolute expiry of AccessTTL from now.
func (ts *TokenService) MintAccess(uid, email, name string) (string, error) {
	now := ts.now()

	claims := &IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   uid,
			Audience:  ts.claimAudience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		UID:   uid,
		Email: email,
		Name:  name,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.sign(claims, ts.accessKey)
}

// MintRefresh signs a refresh claim under the refresh signing key with an
// absolute expiry of RefreshTTL from now.
func (ts *TokenService) MintRefresh(uid string) (string, error) {
	now := ts.now()

	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   uid,
			Audience:  ts.claimAudience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
		},
		UID: uid,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.sign(claims, ts.refreshKey)
}

// VerifyAccess parses and validates an access token, returning the decoded
// identity claim. Signature, payload, and expiry failures all surface as the
// same token-invalid error.
func (ts *TokenService) VerifyAccess(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if err := ts.parse(tokenString, claims, ts.accessKey); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token under the refresh
// signing key.
func (ts *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.parse(tokenString, claims, ts.refreshKey); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenService) sign(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenService) parse(tokenString string, claims jwt.Claims, key []byte) error {
	parserOptions := []jwt.ParserOption{
		// No grace window: a token presented at or past its expiry fails.
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("TokenService verify rejected token", "error", err)
		return authFailure(ErrTokenInvalid, err)
	}

	if !token.Valid {
		ts.logger.Error("TokenService verify could not validate claims")
		return authFailure(ErrTokenInvalid, nil)
	}

	return nil
}

func (ts *TokenService) claimAudience() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}
