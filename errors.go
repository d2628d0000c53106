package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid    = "TOKEN_INVALID"
	TextCodeAssertionFailed = "AUTHENTICATION_FAILED"
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	TextCodeUnauthorized    = "UNAUTHORIZED"
	TextCodePasswordInput   = "INVALID_PASSWORD_INPUT"
	TextCodeDependency      = "DEPENDENCY_UNAVAILABLE"
)

// ErrInvalidCredentials covers both unknown email and password mismatch so a
// caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid covers bad signature, malformed payload, and expiry. The
// caller only learns the token was not acceptable.
var ErrTokenInvalid = errors.New("the token provided is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrAuthenticationFailed is the single opaque failure for the federated
// path. No partial trust: signature, issuer, audience, and expiry failures
// are indistinguishable outward.
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeAssertionFailed).
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned by signup when any account, password-backed or
// federated-only, already owns the email.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when a valid refresh token references an
// account that no longer exists.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnauthorized is the guard's only failure: absent token and invalid
// token collapse to the same outward signal.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrPasswordMismatch is a validation failure on signup input, not an
// authentication failure.
var ErrPasswordMismatch = errors.New("password and confirmation do not match", errors.CategoryValidation).
	WithTextCode(TextCodePasswordInput).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryValidation).
	WithTextCode(TextCodePasswordInput).
	WithCode(errors.CodeBadRequest)

// ErrDependencyUnavailable marks repository or verifier calls that timed out
// or were cancelled. Retryable by the caller.
var ErrDependencyUnavailable = errors.New("dependency unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeDependency)

// IsAuthenticationFailure reports whether err is one of the deliberately
// uninformative authentication-path failures.
func IsAuthenticationFailure(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryAuth
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// authFailure clones the shared error value so per-request metadata (kept
// for logging) never leaks into the package-level var or to the caller.
func authFailure(base *errors.Error, cause error) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	if cause != nil {
		clone.Source = cause
		return clone.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return clone
}
