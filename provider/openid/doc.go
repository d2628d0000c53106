// Package openid verifies externally issued OpenID Connect identity
// assertions against a trusted issuer's JWKS, producing the verified
// identity claims the core account resolver consumes.
package openid
