package authmw

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/logging"
	"github.com/empdir/emp-api/internal/revocation"
	"github.com/empdir/emp-api/internal/tokens"
)

const ContextKey = "user"

// RequireAuth validates the bearer token on every request: stateless
// signature/issuer/audience/expiry checks first, then the stateful revocation
// lookup. The split keeps the normal path shared-nothing while still letting
// logout terminate a session server-side. Both failure kinds surface as 401.
func RequireAuth(codec *tokens.Codec, registry *revocation.Registry) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ErrorHandler: func(c echo.Context, err error) error {
			// Missing, malformed, invalid and revoked all collapse to 401.
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := codec.Parse(auth)
			if err != nil {
				logging.FromContext(c.Request().Context()).Warn("request_rejected", "reason", "token_invalid")
				return nil, err
			}
			if registry.Contains(auth) {
				logging.FromContext(c.Request().Context()).Warn("request_rejected", "reason", "token_revoked", "subject", claims.Subject)
				return nil, revocation.ErrTokenRevoked
			}
			return claims, nil
		},
	})
}
