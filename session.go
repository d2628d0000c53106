package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// TokenPair is the pair of independently signed, independently expiring
// artifacts handed to the caller after any successful sign-in.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// SessionIssuer turns a resolved account record into a token pair and
// remints access tokens from valid refresh tokens.
type SessionIssuer struct {
	tokens *TokenService
	store  UserStore
	logger Logger
}

// NewSessionIssuer will create a new SessionIssuer
func NewSessionIssuer(tokens *TokenService, store UserStore) *SessionIssuer {
	return &SessionIssuer{
		tokens: tokens,
		store:  store,
		logger: defLogger{},
	}
}

func (s *SessionIssuer) WithLogger(l Logger) *SessionIssuer {
	if l != nil {
		s.logger = l
	}
	return s
}

// Issue builds both claims from the current account record and mints the
// pair. Pure composition, no I/O.
func (s *SessionIssuer) Issue(account *User) (*TokenPair, error) {
	if account == nil {
		return nil, errors.New("account must not be nil", errors.CategoryInternal)
	}

	uid := account.ID.String()

	access, err := s.tokens.MintAccess(uid, account.Email, account.Name)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.MintRefresh(uid)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.tokens.Now().Add(s.tokens.AccessTTL()),
		TokenType:    "Bearer",
	}, nil
}

// Refresh verifies the refresh token, re-reads the account it names, and
// mints a fresh access token from the record's current email and name. The
// re-read is the point: claim data from original issuance is never reused.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	account, err := s.store.GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Info("Refresh for deleted account", "id", claims.UserID())
			return "", ErrAccountNotFound
		}
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), ErrDependencyUnavailable.Category, ErrDependencyUnavailable.Message).
				WithTextCode(ErrDependencyUnavailable.TextCode)
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during refresh")
	}

	return s.tokens.MintAccess(account.ID.String(), account.Email, account.Name)
}
