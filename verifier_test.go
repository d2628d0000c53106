package auth_test

import (
	"context"
	"testing"

	"github.com/ledgertide/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLocalAccount(t *testing.T, store *memStore, email, password string) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return store.put(&auth.User{
		Name:         "Alice",
		Email:        email,
		PasswordHash: hash,
	})
}

func TestVerifyLocal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedLocalAccount(t, store, "alice@example.com", "password123")

	verifier := auth.NewCredentialVerifier(store)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := verifier.VerifyLocal(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := verifier.VerifyLocal(ctx, "alice@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, auth.IsAuthenticationFailure(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := verifier.VerifyLocal(ctx, "nobody@example.com", "password123")
		require.Error(t, err)
		assert.True(t, auth.IsAuthenticationFailure(err))
	})
}

func TestVerifyLocalEnumerationResistance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedLocalAccount(t, store, "alice@example.com", "password123")

	verifier := auth.NewCredentialVerifier(store)

	_, unknownErr := verifier.VerifyLocal(ctx, "nobody@example.com", "password123")
	_, mismatchErr := verifier.VerifyLocal(ctx, "alice@example.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, mismatchErr)

	// An attacker probing emails must see the identical failure for an
	// unknown address and a wrong password.
	assert.Equal(t, friendlyMessage(unknownErr), friendlyMessage(mismatchErr))
	assert.Equal(t, unknownErr.Error(), mismatchErr.Error())
}

func TestVerifyLocalFederatedOnlyAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(&auth.User{
		Name:       "Bob",
		Email:      "bob@example.com",
		ExternalID: "idp|bob",
	})

	verifier := auth.NewCredentialVerifier(store)

	_, err := verifier.VerifyLocal(ctx, "bob@example.com", "anything")
	require.Error(t, err)
	assert.Equal(t, auth.ErrInvalidCredentials.Message, friendlyMessage(err))
}

func TestVerifyExternal(t *testing.T) {
	ctx := context.Background()
	verifier := auth.NewCredentialVerifier(newMemStore())

	t.Run("verified assertion", func(t *testing.T) {
		stub := &stubVerifier{identity: &auth.VerifiedIdentity{
			ExternalID: "idp|alice",
			Email:      "alice@example.com",
			Name:       "Alice",
		}}

		identity, err := verifier.VerifyExternal(ctx, stub, "assertion")
		require.NoError(t, err)
		assert.Equal(t, "idp|alice", identity.ExternalID)
	})

	t.Run("rejected assertion collapses to one failure", func(t *testing.T) {
		stub := &stubVerifier{err: auth.ErrAuthenticationFailed}

		_, err := verifier.VerifyExternal(ctx, stub, "assertion")
		require.Error(t, err)
		assert.Equal(t, auth.ErrAuthenticationFailed.Message, friendlyMessage(err))
	})

	t.Run("missing claims rejected", func(t *testing.T) {
		stub := &stubVerifier{identity: &auth.VerifiedIdentity{Email: "alice@example.com"}}

		_, err := verifier.VerifyExternal(ctx, stub, "assertion")
		require.Error(t, err)
		assert.True(t, auth.IsAuthenticationFailure(err))
	})

	t.Run("no verifier configured fails closed", func(t *testing.T) {
		_, err := verifier.VerifyExternal(ctx, nil, "assertion")
		require.Error(t, err)
		assert.True(t, auth.IsAuthenticationFailure(err))
	})
}
