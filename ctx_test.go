package auth_test

import (
	"context"
	"testing"

	"github.com/ledgertide/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsContextRoundtrip(t *testing.T) {
	claims := &auth.IdentityClaims{UID: "user-1", Email: "alice@example.com"}

	ctx := auth.WithClaimsContext(context.Background(), claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Same(t, claims, got)
}

func TestGetClaimsMissing(t *testing.T) {
	got, ok := auth.GetClaims(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
