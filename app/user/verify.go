package user

import (
	"errors"
	"net/http"

	"bitwise74/demo-app/app/view"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserVerify marks the account behind the link as verified. Unknown emails
// get the same page as known ones so the link can't be used to find out
// who is registered.
func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString(middleware.RequestIDKey)

	email := c.Query("email")
	if email == "" {
		view.Render(c, http.StatusBadRequest, "message.html", view.Page{
			Title:   "Email not found",
			Message: "The verification link is missing an email address.",
		})
		return
	}

	err := d.Users.VerifyUser(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			zap.L().Error("Failed to verify user", zap.Error(err), zap.String("requestID", requestID))
			view.InternalError(c)
			return
		}

		zap.L().Info("Verification link used for an unknown email", zap.String("requestID", requestID))
	}

	view.Render(c, http.StatusOK, "verified.html", view.Page{
		Title: "Email verified",
		Email: email,
	})
}
