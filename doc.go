// Package auth implements a credential-and-session authentication core:
// password and federated sign-in converge on a single signed token-pair
// contract (short-lived access token, long-lived refresh token), with
// stateless verification at request time.
//
// Token lifecycle:
//   - TokenService mints and verifies both token kinds under independent
//     signing keys, so neither token is ever acceptable in the other's
//     verification path.
//   - RefreshClaims carry only the account id. Refreshing always re-reads
//     the account record, so a renewed access token reflects the current
//     profile rather than data frozen at original issuance.
//
// Identity establishment:
//   - CredentialVerifier checks a local password against the stored bcrypt
//     hash. Unknown email and wrong password are indistinguishable to the
//     caller.
//   - AssertionVerifier (see provider/openid) validates an externally issued
//     identity assertion and yields a VerifiedIdentity.
//   - AccountResolver lands a VerifiedIdentity on one canonical account per
//     email: by external id first, then by email (linking), then by creating
//     a new record. Email uniqueness is enforced at the repository boundary.
//
// The Authenticator type ties these together behind the operations a
// transport layer needs: Signup, Signin, FederatedSignin, Refresh,
// Authorize, and Logout.
package auth
