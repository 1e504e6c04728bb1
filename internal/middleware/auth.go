package middleware

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"billing_app_echo/internal/repositories"
)

// ActorKey is the context key under which the authenticated admin is stored
const ActorKey = "actor"

// RequireAdmin returns a middleware that verifies the Firebase session cookie
// and requires the resolved local user to hold the Admin role. The actor is
// exposed to downstream handlers via the request context.
func RequireAdmin(authClient *auth.Client, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication is not configured",
				})
			}

			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "unauthorized",
				})
			}

			decodedToken, err := authClient.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid session",
				})
			}

			user, err := users.FindByFirebaseUID(c.Request().Context(), decodedToken.UID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "failed to resolve session user",
				})
			}
			if user == nil || !user.IsAdmin() {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "unauthorized",
				})
			}

			c.Set(ActorKey, user)
			return next(c)
		}
	}
}
