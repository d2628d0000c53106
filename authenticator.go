package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Authenticator is the surface exposed to the transport layer: every
// identity-establishment path converges here on the same token-pair
// contract.
type Authenticator struct {
	verifier *CredentialVerifier
	resolver *AccountResolver
	issuer   *SessionIssuer
	guard    *AccessGuard
	external AssertionVerifier
	logger   Logger
}

// SessionResult is what a successful signup or sign-in hands back.
type SessionResult struct {
	Tokens  *TokenPair     `json:"tokens"`
	Account AccountSummary `json:"account"`
}

// NewAuthenticator wires the core components against a single account store
// and token service.
func NewAuthenticator(store UserStore, tokens *TokenService) *Authenticator {
	return &Authenticator{
		verifier: NewCredentialVerifier(store),
		resolver: NewAccountResolver(store),
		issuer:   NewSessionIssuer(tokens, store),
		guard:    NewAccessGuard(tokens),
		logger:   defLogger{},
	}
}

func (a *Authenticator) WithLogger(l Logger) *Authenticator {
	if l == nil {
		return a
	}
	a.logger = l
	a.verifier.WithLogger(l)
	a.resolver.WithLogger(l)
	a.issuer.WithLogger(l)
	a.guard.WithLogger(l)
	return a
}

// WithAssertionVerifier configures the federated-identity verification
// capability. FederatedSignin fails closed without one.
func (a *Authenticator) WithAssertionVerifier(v AssertionVerifier) *Authenticator {
	a.external = v
	return a
}

// Guard returns the access guard, for wiring route middleware.
func (a *Authenticator) Guard() *AccessGuard {
	return a.guard
}

// SignupPayload is the local registration input.
type SignupPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate applies the signup input rules.
func (p SignupPayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.ConfirmPassword, validation.Required),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid signup payload").
			WithTextCode(TextCodePasswordInput)
	}

	if p.Password != p.ConfirmPassword {
		return ErrPasswordMismatch
	}

	return nil
}

// Signup registers a password-backed account and signs it in.
func (a *Authenticator) Signup(ctx context.Context, payload SignupPayload) (*SessionResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	account, err := a.resolver.ResolveLocalSignup(ctx, payload.Name, payload.Email, payload.Password)
	if err != nil {
		a.logger.Info("Signup rejected", "email", payload.Email, "error", err)
		return nil, err
	}

	return a.issueFor(account)
}

// Signin authenticates a local password and issues a token pair.
func (a *Authenticator) Signin(ctx context.Context, email, password string) (*SessionResult, error) {
	account, err := a.verifier.VerifyLocal(ctx, email, password)
	if err != nil {
		a.logger.Info("Signin rejected", "error", err)
		return nil, err
	}

	return a.issueFor(account)
}

// FederatedSignin verifies an external identity assertion, resolves it onto
// the canonical account for its email, and issues a token pair.
func (a *Authenticator) FederatedSignin(ctx context.Context, assertion string) (*SessionResult, error) {
	identity, err := a.verifier.VerifyExternal(ctx, a.external, assertion)
	if err != nil {
		a.logger.Info("FederatedSignin rejected", "error", err)
		return nil, err
	}

	account, err := a.resolver.ResolveExternal(ctx, identity)
	if err != nil {
		return nil, err
	}

	return a.issueFor(account)
}

// Refresh mints a new access token from a valid refresh token.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return a.issuer.Refresh(ctx, refreshToken)
}

// Authorize gates a request on access-token validity.
func (a *Authenticator) Authorize(accessToken string) (*IdentityClaims, error) {
	return a.guard.Authorize(accessToken)
}

// Logout is intentionally stateless: sessions exist only as token validity,
// so the server has nothing to forget. The caller discards both tokens; the
// refresh token stays cryptographically valid until its signed expiry.
func (a *Authenticator) Logout(ctx context.Context) {
	a.logger.Debug("Logout: caller discards tokens")
}

func (a *Authenticator) issueFor(account *User) (*SessionResult, error) {
	tokens, err := a.issuer.Issue(account)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		Tokens:  tokens,
		Account: account.Summary(),
	}, nil
}
