package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// InvalidTokenChallenge is sent when a presented token fails verification.
const InvalidTokenChallenge = `Bearer error="invalid_token"`

// BearerMiddleware attaches the principal named by a valid bearer token to
// the request context. Requests without an Authorization header pass through
// anonymously, and so do requests whose token fails verification: a client
// holding an expired token must still reach the login mutation. Those get a
// WWW-Authenticate challenge so the client knows to log in again. A header
// that is not a bearer credential at all is rejected with 401.
func BearerMiddleware(issuer *TokenIssuer, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			p, err := issuer.Verify(strings.TrimSpace(tokenStr))
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, InvalidTokenChallenge)
				zerolog.Ctx(c.Request().Context()).Debug().Msg("bearer token rejected, continuing anonymously")
				return next(c)
			}

			ctx := WithPrincipal(c.Request().Context(), p)
			zerolog.Ctx(ctx).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Str("user_type", string(p.UserType)).Int64("user_id", p.UserID)
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext returns the authenticated principal, or nil for
// anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalKey).(*Principal)
	return p
}
