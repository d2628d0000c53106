package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var LinkExternalSQL = `UPDATE "users" AS "usr"
SET
	"external_id" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the durable account repository. The Tx variants exist for
// callers composing larger transactions; NewUserStore narrows a Users to
// the UserStore slice the core components consume.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByExternalIDTx(ctx context.Context, tx bun.IDB, externalID string) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	LinkExternal(ctx context.Context, id string, externalID string) (*User, error)
	LinkExternalTx(ctx context.Context, tx bun.IDB, id string, externalID string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db               *bun.DB
	deterministicIDs bool
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

type UsersOption func(*users)

// WithDeterministicIDs derives account ids from the email address instead
// of generating random ones, so repeated imports land on stable ids.
func WithDeterministicIDs() UsersOption {
	return func(u *users) {
		u.deterministicIDs = true
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumn(ctx, tx, "email", normalizeEmail(email))
}

func (a *users) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	return a.GetByExternalIDTx(ctx, a.db, externalID)
}

func (a *users) GetByExternalIDTx(ctx context.Context, tx bun.IDB, externalID string) (*User, error) {
	return a.getByColumn(ctx, tx, "external_id", externalID)
}

func (a *users) getByColumn(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	a.prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) LinkExternal(ctx context.Context, id string, externalID string) (*User, error) {
	return a.LinkExternalTx(ctx, a.db, id, externalID)
}

// LinkExternalTx sets external_id on an existing record in a single
// statement so the link is atomic with respect to concurrent writers.
func (a *users) LinkExternalTx(ctx context.Context, tx bun.IDB, id string, externalID string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, LinkExternalSQL, externalID, id)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	return res[0], nil
}

func (a *users) prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = normalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		if a.deterministicIDs && record.Email != "" {
			if id, err := hashid.NewUUID(record.Email); err == nil {
				record.ID = id
			}
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUserStore narrows the repository to the UserStore contract the core
// components consume.
func NewUserStore(repo Users) UserStore {
	return &userStore{repo: repo}
}

type userStore struct {
	repo Users
}

var _ UserStore = (*userStore)(nil)

func (s *userStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *userStore) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *userStore) Create(ctx context.Context, user *User) (*User, error) {
	return s.repo.Create(ctx, user)
}

func (s *userStore) LinkExternal(ctx context.Context, id string, externalID string) (*User, error) {
	return s.repo.LinkExternal(ctx, id, externalID)
}
