package auth

import "github.com/google/uuid"

// newTokenID assigns a unique jti so two tokens minted in the same clock
// tick are still distinct artifacts.
func newTokenID() string {
	return uuid.NewString()
}

// ParseAccountID validates an opaque account identifier coming out of a
// token claim before it is used for a repository lookup.
func ParseAccountID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
