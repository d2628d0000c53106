//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Race-enabled test runs use the default cost so the suite stays inside
// strict timeouts.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
