package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record. Exactly one record exists per email address;
// the unique constraint on email is the serialization point for concurrent
// signups and federated sign-ins.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,nullzero" json:"-"`
	ExternalID    string     `bun:"external_id,nullzero,unique" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPassword reports whether the account can authenticate locally.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// IsFederated reports whether the account is linked to an external identity.
func (u *User) IsFederated() bool {
	return u != nil && u.ExternalID != ""
}

// AccountSummary is the caller-facing projection of a User, returned
// alongside a token pair. It never carries credential material.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary builds the caller-facing projection.
func (u *User) Summary() AccountSummary {
	if u == nil {
		return AccountSummary{}
	}
	return AccountSummary{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
	}
}
