package openid_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgertide/go-auth"
	"github.com/ledgertide/go-auth/provider/openid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("issuer-signing-key")

func testKeyfunc(t *jwt.Token) (any, error) {
	return testKey, nil
}

func newTestVerifier(t *testing.T) *openid.Verifier {
	t.Helper()
	v, err := openid.NewVerifier(openid.Config{
		Issuer:   "https://idp.example.com",
		ClientID: "ledgertide-app",
		Keyfunc:  testKeyfunc,
	})
	require.NoError(t, err)
	return v
}

type assertionInput struct {
	subject  string
	email    string
	name     string
	issuer   string
	audience string
	expires  time.Time
}

func signAssertion(t *testing.T, in assertionInput) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": in.subject,
		"iss": in.issuer,
		"aud": in.audience,
		"exp": in.expires.Unix(),
		"iat": time.Now().Unix(),
	}
	if in.email != "" {
		claims["email"] = in.email
	}
	if in.name != "" {
		claims["name"] = in.name
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return token
}

func validInput() assertionInput {
	return assertionInput{
		subject:  "idp|alice",
		email:    "alice@example.com",
		name:     "Alice",
		issuer:   "https://idp.example.com",
		audience: "ledgertide-app",
		expires:  time.Now().Add(time.Hour),
	}
}

func TestVerifyAssertion(t *testing.T) {
	verifier := newTestVerifier(t)

	identity, err := verifier.Verify(context.Background(), signAssertion(t, validInput()))
	require.NoError(t, err)

	assert.Equal(t, "idp|alice", identity.ExternalID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice", identity.Name)
}

func TestVerifyAssertionRejections(t *testing.T) {
	verifier := newTestVerifier(t)

	wrongAudience := validInput()
	wrongAudience.audience = "someone-else"

	wrongIssuer := validInput()
	wrongIssuer.issuer = "https://evil.example.com"

	expired := validInput()
	expired.expires = time.Now().Add(-time.Minute)

	missingEmail := validInput()
	missingEmail.email = ""

	missingSubject := validInput()
	missingSubject.subject = ""

	tests := []struct {
		name      string
		assertion string
	}{
		{"audience mismatch", signAssertion(t, wrongAudience)},
		{"issuer mismatch", signAssertion(t, wrongIssuer)},
		{"expired assertion", signAssertion(t, expired)},
		{"missing email claim", signAssertion(t, missingEmail)},
		{"missing subject claim", signAssertion(t, missingSubject)},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tt.assertion)
			require.Error(t, err)
			// Every rejection collapses to the same opaque failure.
			assert.True(t, auth.IsAuthenticationFailure(err))
		})
	}
}

func TestNewVerifierConfig(t *testing.T) {
	t.Run("client ID required", func(t *testing.T) {
		_, err := openid.NewVerifier(openid.Config{Issuer: "https://idp.example.com"})
		assert.Error(t, err)
	})

	t.Run("issuer required without keyfunc", func(t *testing.T) {
		_, err := openid.NewVerifier(openid.Config{ClientID: "app"})
		assert.Error(t, err)
	})

	t.Run("invalid issuer URL", func(t *testing.T) {
		_, err := openid.NewVerifier(openid.Config{ClientID: "app", Issuer: "not a url"})
		assert.Error(t, err)
	})
}
