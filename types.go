package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger takes a message plus alternating key/value pairs.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Error(message string, args ...any)
}

// Config holds auth options. Values are fixed at process start; components
// copy what they need at construction time.
type Config interface {
	GetAccessSigningKey() string
	GetRefreshSigningKey() string
	GetAccessTTL() time.Duration
	GetRefreshTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetClientID() string
}

// UserStore is the narrow repository contract the core needs. The account
// store is the only shared mutable resource; everything else is pure.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	LinkExternal(ctx context.Context, id string, externalID string) (*User, error)
}

// VerifiedIdentity is the claim set extracted from a successfully verified
// external assertion.
type VerifiedIdentity struct {
	ExternalID string
	Email      string
	Name       string
}

// AssertionVerifier validates an externally issued identity assertion
// against a trusted issuer. Implementations must check the assertion's
// audience against this service's registered client identity.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*VerifiedIdentity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(message string, args ...any) {
	d.print("[ERR]", message, args...)
}

func (d defLogger) Info(message string, args ...any) {
	d.print("[INF]", message, args...)
}

func (d defLogger) Debug(message string, args ...any) {
	d.print("[DBG]", message, args...)
}

func (d defLogger) print(level, message string, args ...any) {
	var pairs strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&pairs, " %v=%v", args[i], args[i+1])
	}
	fmt.Printf("%s AUTH %s%s\n", level, message, pairs.String())
}
