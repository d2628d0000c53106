package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// CredentialVerifier validates local credentials against the account store.
type CredentialVerifier struct {
	store  UserStore
	logger Logger

	// dummyHash absorbs a bcrypt compare when the email is unknown, so the
	// two failure paths cost the same.
	dummyHash string
}

// NewCredentialVerifier will create a new CredentialVerifier
func NewCredentialVerifier(store UserStore) *CredentialVerifier {
	return &CredentialVerifier{
		store:     store,
		logger:    defLogger{},
		dummyHash: RandomPasswordHash(),
	}
}

func (v *CredentialVerifier) WithLogger(l Logger) *CredentialVerifier {
	if l != nil {
		v.logger = l
	}
	return v
}

// VerifyLocal looks up the account by email and compares the supplied
// password against the stored hash. An unknown email and a wrong password
// return the identical error value.
func (v *CredentialVerifier) VerifyLocal(ctx context.Context, email, password string) (*User, error) {
	user, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			ComparePasswordAndHash(password, v.dummyHash)
			v.logger.Debug("VerifyLocal no account for email", "email", email)
			return nil, authFailure(ErrInvalidCredentials, nil)
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), ErrDependencyUnavailable.Category, ErrDependencyUnavailable.Message).
				WithTextCode(ErrDependencyUnavailable.TextCode)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if !user.HasPassword() {
		// Federated-only account: there is no password to match, but the
		// outward signal must be the same as a mismatch.
		ComparePasswordAndHash(password, v.dummyHash)
		v.logger.Debug("VerifyLocal account has no password", "id", user.ID.String())
		return nil, authFailure(ErrInvalidCredentials, nil)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		v.logger.Debug("VerifyLocal password mismatch", "id", user.ID.String())
		return nil, authFailure(ErrInvalidCredentials, nil)
	}

	return user, nil
}

// VerifyExternal delegates assertion validation to the configured verifier
// and collapses every failure to one opaque error.
func (v *CredentialVerifier) VerifyExternal(ctx context.Context, verifier AssertionVerifier, assertion string) (*VerifiedIdentity, error) {
	if verifier == nil {
		return nil, authFailure(ErrAuthenticationFailed, nil)
	}

	identity, err := verifier.Verify(ctx, assertion)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), ErrDependencyUnavailable.Category, ErrDependencyUnavailable.Message).
				WithTextCode(ErrDependencyUnavailable.TextCode)
		}
		v.logger.Debug("VerifyExternal assertion rejected", "error", err)
		return nil, authFailure(ErrAuthenticationFailed, err)
	}

	if identity == nil || identity.ExternalID == "" || identity.Email == "" {
		v.logger.Error("VerifyExternal assertion missing required claims")
		return nil, authFailure(ErrAuthenticationFailed, nil)
	}

	return identity, nil
}
