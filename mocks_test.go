package auth_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/ledgertide/go-auth"
)

// memStore is an in-memory auth.UserStore that enforces the same email and
// external-id uniqueness a real repository would, so resolver races can be
// exercised deterministically.
type memStore struct {
	mu      sync.Mutex
	byID    map[string]*auth.User
	failing error
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*auth.User{}}
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *memStore) put(u *auth.User) *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	s.byID[u.ID.String()] = &cp
	return copyUser(&cp)
}

func copyUser(u *auth.User) *auth.User {
	cp := *u
	return &cp
}

func (s *memStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		return copyUser(u), nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) GetByExternalID(ctx context.Context, externalID string) (*auth.User, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.ExternalID != "" && u.ExternalID == externalID {
			return copyUser(u), nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == user.Email {
			return nil, fmt.Errorf("UNIQUE constraint failed: users.email")
		}
		if user.ExternalID != "" && u.ExternalID == user.ExternalID {
			return nil, fmt.Errorf("UNIQUE constraint failed: users.external_id")
		}
	}
	cp := *user
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.byID[cp.ID.String()] = &cp
	return copyUser(&cp), nil
}

func (s *memStore) LinkExternal(ctx context.Context, id string, externalID string) (*auth.User, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	u.ExternalID = externalID
	return copyUser(u), nil
}

var _ auth.UserStore = (*memStore)(nil)

// stubVerifier is a canned auth.AssertionVerifier.
type stubVerifier struct {
	identity *auth.VerifiedIdentity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, assertion string) (*auth.VerifiedIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

// testConfig implements auth.Config with sane test defaults.
type testConfig struct {
	accessKey  string
	refreshKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		accessKey:  "access-signing-secret",
		refreshKey: "refresh-signing-secret",
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		issuer:     "go-auth-test",
	}
}

func (c *testConfig) GetAccessSigningKey() string  { return c.accessKey }
func (c *testConfig) GetRefreshSigningKey() string { return c.refreshKey }
func (c *testConfig) GetAccessTTL() time.Duration  { return c.accessTTL }
func (c *testConfig) GetRefreshTTL() time.Duration { return c.refreshTTL }
func (c *testConfig) GetIssuer() string            { return c.issuer }
func (c *testConfig) GetAudience() []string        { return c.audience }
func (c *testConfig) GetClientID() string          { return "test-client" }

var _ auth.Config = (*testConfig)(nil)

// friendlyMessage unwraps the caller-facing message from a structured error.
func friendlyMessage(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Message
	}
	return err.Error()
}
