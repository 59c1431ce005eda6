package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

const (
	// CookieName is the cookie the token is stored in after login.
	CookieName = "token"

	principalKey = "principal"
	roleKey      = "role"
)

// Authenticate verifies the bearer token and stores the principal on the
// context. The Authorization header wins over the cookie when both are sent.
func Authenticate(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}

			p, err := tokens.Verify(raw)
			if err != nil || p.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			WithPrincipal(c, *p)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication token")
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// WithPrincipal stores p and its role on c.
func WithPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.Set(roleKey, p.Role)
}
