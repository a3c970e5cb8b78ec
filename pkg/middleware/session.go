package middleware

import (
	"net/http"

	"bitwise74/demo-app/pkg/session"

	"github.com/gin-gonic/gin"
)

const UserEmailKey = "userEmail"

// NewSessionMiddleware resolves the signedIn cookie. Valid sessions set
// userEmail on the context. Stale cookies are cleared. It never aborts,
// use RequireSession or RedirectIfSignedIn for that.
func NewSessionMiddleware(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil {
			c.Next()
			return
		}

		email, err := m.Validate(token)
		if err != nil {
			m.ClearCookie(c)
			c.Next()
			return
		}

		c.Set(UserEmailKey, email)
		c.Next()
	}
}

// RequireSession redirects to the login page when there's no valid session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserEmailKey) == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RedirectIfSignedIn sends users who are already logged in to the dashboard
func RedirectIfSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserEmailKey) != "" {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			c.Abort()
			return
		}

		c.Next()
	}
}
