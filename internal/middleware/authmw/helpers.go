package authmw

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/tokens"
)

// CurrentClaims returns the decoded identity attached by RequireAuth.
func CurrentClaims(c echo.Context) (*tokens.Claims, error) {
	claims, ok := c.Get(ContextKey).(*tokens.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token claims")
	}
	return claims, nil
}

// BearerToken extracts the raw token from the Authorization header. Logout
// needs it to record the revocation entry. The scheme compare is
// case-insensitive so any casing the gate accepted is accepted here too.
func BearerToken(c echo.Context) string {
	const scheme = "Bearer "
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) <= len(scheme) || !strings.EqualFold(auth[:len(scheme)], scheme) {
		return ""
	}
	return auth[len(scheme):]
}

func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := CurrentClaims(c)
			if err != nil {
				return err
			}
			if !slices.Contains(required, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}
