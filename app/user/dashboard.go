package user

import (
	"errors"
	"net/http"

	"bitwise74/demo-app/app/view"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/middleware"
	"bitwise74/demo-app/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Dashboard(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString(middleware.RequestIDKey)
	email := c.GetString(middleware.UserEmailKey)

	user, err := d.Users.FindUser(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Session outlived the account, e.g. the memory store was reset
			if token, err := c.Cookie(session.CookieName); err == nil {
				d.Sessions.Revoke(token)
			}

			d.Sessions.ClearCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
		view.InternalError(c)
		return
	}

	view.Render(c, http.StatusOK, "dashboard.html", view.Page{
		Title:    "Dashboard",
		Username: user.Username,
		Email:    user.Email,
	})
}
