package auth

import (
	"strings"

	"github.com/goliatone/go-router"
)

// DefaultContextKey is the router locals key the middleware stores the
// decoded claim under.
const DefaultContextKey = "claims"

// DefaultCookieName is the cookie consulted when no Authorization header is
// present. Cookie framing itself stays a transport concern; the middleware
// only reads the opaque string.
const DefaultCookieName = "access_token"

// MiddlewareConfig tunes the guard middleware. Zero values take defaults.
type MiddlewareConfig struct {
	ContextKey   string
	CookieName   string
	AuthScheme   string
	ErrorHandler func(c router.Context, err error) error
}

// Protected returns a middleware that gates a route on access-token
// validity and exposes the decoded claim for the rest of the request.
func Protected(guard *AccessGuard, config ...MiddlewareConfig) router.MiddlewareFunc {
	cfg := middlewareDefaults(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token := extractToken(ctx, cfg)

			claims, err := guard.Authorize(token)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			return hf(ctx)
		}
	}
}

func middlewareDefaults(config ...MiddlewareConfig) MiddlewareConfig {
	cfg := MiddlewareConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return err
		}
	}

	return cfg
}

func extractToken(ctx router.Context, cfg MiddlewareConfig) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := strings.TrimSpace(cfg.AuthScheme)
	// The scheme must be followed by a space: "Bearer xyz" carries a token,
	// "Bearerxyz" does not.
	if l := len(scheme); len(header) > l+1 && strings.EqualFold(header[:l], scheme) && header[l] == ' ' {
		return strings.TrimSpace(header[l+1:])
	}

	return ctx.Cookies(cfg.CookieName)
}
