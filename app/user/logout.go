package user

import (
	"net/http"

	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/pkg/session"

	"github.com/gin-gonic/gin"
)

func UserLogout(c *gin.Context, d *internal.Deps) {
	if token, err := c.Cookie(session.CookieName); err == nil {
		d.Sessions.Revoke(token)
	}

	d.Sessions.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
