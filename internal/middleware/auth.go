package middleware

import (
	"net/http"
	"storefront/internal/auth"
	"storefront/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

const userKey = "user"

// Auth resolves the caller from a bearer token, or from the auth provider's
// cookie when no Authorization header is sent, and fails with an
// unauthorized service error otherwise.
func Auth(verifier *auth.Verifier, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" && cookieName != "" {
				if ck, err := c.Cookie(cookieName); err == nil {
					token = ck.Value
				}
			}
			if token == "" {
				return service.Unauthorized("Unauthorized")
			}

			user, err := verifier.Verify(token)
			if err != nil {
				return service.Unauthorized("Unauthorized")
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// UserFrom returns the user set by Auth, or nil on public routes.
func UserFrom(c echo.Context) *auth.User {
	u, _ := c.Get(userKey).(*auth.User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
