package auth

// AccessGuard is the request-time gate. It holds no per-request state; a
// session is reconstructed entirely from token validity at verification
// time.
type AccessGuard struct {
	tokens *TokenService
	logger Logger
}

// NewAccessGuard will create a new AccessGuard
func NewAccessGuard(tokens *TokenService) *AccessGuard {
	return &AccessGuard{
		tokens: tokens,
		logger: defLogger{},
	}
}

func (g *AccessGuard) WithLogger(l Logger) *AccessGuard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Authorize accepts or rejects an access token. An absent token and an
// invalid or expired one produce the same outward failure, so a caller
// cannot tell absent from forged.
func (g *AccessGuard) Authorize(accessToken string) (*IdentityClaims, error) {
	if accessToken == "" {
		g.logger.Debug("Authorize called without a token")
		return nil, authFailure(ErrUnauthorized, nil)
	}

	claims, err := g.tokens.VerifyAccess(accessToken)
	if err != nil {
		g.logger.Debug("Authorize rejected token", "error", err)
		return nil, authFailure(ErrUnauthorized, err)
	}

	return claims, nil
}
