package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AccountResolver lands identities on account records. The three-way
// precedence in ResolveExternal is load-bearing: reordering it changes which
// account a returning federated user signs into.
type AccountResolver struct {
	store  UserStore
	logger Logger
}

// NewAccountResolver will create a new AccountResolver
func NewAccountResolver(store UserStore) *AccountResolver {
	return &AccountResolver{
		store:  store,
		logger: defLogger{},
	}
}

func (r *AccountResolver) WithLogger(l Logger) *AccountResolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// ResolveExternal finds, links, or creates the account for a verified
// external identity:
//  1. an account already linked to the external id is returned unchanged
//  2. an account owning the email is linked to the external id
//  3. otherwise a new password-less account is created
//
// Two concurrent calls for the same brand-new email race on the email
// uniqueness constraint; the loser re-reads and takes the link branch.
func (r *AccountResolver) ResolveExternal(ctx context.Context, identity *VerifiedIdentity) (*User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, authFailure(ErrAuthenticationFailed, nil)
	}

	user, err := r.store.GetByExternalID(ctx, identity.ExternalID)
	if err == nil {
		return user, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, r.storeFailure(ctx, err, "failed to look up account by external id")
	}

	if linked, err := r.linkByEmail(ctx, identity); err != nil {
		return nil, err
	} else if linked != nil {
		return linked, nil
	}

	created, err := r.store.Create(ctx, &User{
		Name:       identity.Name,
		Email:      identity.Email,
		ExternalID: identity.ExternalID,
	})
	if err == nil {
		r.logger.Info("ResolveExternal created account", "id", created.ID.String())
		return created, nil
	}

	if IsUniqueViolation(err) {
		// Lost the insert race: some concurrent request created the email
		// first. Re-read and link.
		r.logger.Debug("ResolveExternal insert conflict, retrying as link", "email", identity.Email)
		linked, err := r.linkByEmail(ctx, identity)
		if err != nil {
			return nil, err
		}
		if linked != nil {
			return linked, nil
		}
		// The conflicting record vanished between insert and re-read.
		return nil, errors.Wrap(err, errors.CategoryInternal, "account creation conflict could not be resolved")
	}

	return nil, r.storeFailure(ctx, err, "failed to create account")
}

// ResolveLocalSignup creates a password-backed account. It fails with a
// conflict if any record owns the email, including federated-only accounts:
// signup never silently attaches a password to an account it did not create.
func (r *AccountResolver) ResolveLocalSignup(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	if _, err := r.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsRecordNotFound(err) {
		return nil, r.storeFailure(ctx, err, "failed to check email availability")
	}

	created, err := r.store.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, r.storeFailure(ctx, err, "failed to create account")
	}

	r.logger.Info("ResolveLocalSignup created account", "id", created.ID.String())

	return created, nil
}

func (r *AccountResolver) linkByEmail(ctx context.Context, identity *VerifiedIdentity) (*User, error) {
	user, err := r.store.GetByEmail(ctx, identity.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, r.storeFailure(ctx, err, "failed to look up account by email")
	}

	linked, err := r.store.LinkExternal(ctx, user.ID.String(), identity.ExternalID)
	if err != nil {
		return nil, r.storeFailure(ctx, err, "failed to link external identity")
	}

	r.logger.Info("ResolveExternal linked account", "id", linked.ID.String())

	return linked, nil
}

func (r *AccountResolver) storeFailure(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), ErrDependencyUnavailable.Category, ErrDependencyUnavailable.Message).
			WithTextCode(ErrDependencyUnavailable.TextCode)
	}
	return errors.Wrap(err, errors.CategoryInternal, msg)
}

// IsUniqueViolation reports whether err is a repository uniqueness
// constraint failure. Matched textually across drivers, same as the token
// error helpers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
