package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetCookie writes the session token to the signedIn cookie
func (m *Manager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.maxAge.Seconds()), "/", m.domain, m.secure, true)
}

// ClearCookie tells the browser to drop the signedIn cookie
func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
}
