package user

import (
	"errors"
	"net/http"

	"bitwise74/demo-app/app/view"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/internal/service"
	"bitwise74/demo-app/pkg/middleware"
	"bitwise74/demo-app/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `form:"email" binding:"required,email,mailaddr"`
	Password string `form:"password" binding:"required"`
}

func LoginPage(c *gin.Context) {
	view.Render(c, http.StatusOK, "login.html", view.Page{Title: "Log in"})
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString(middleware.RequestIDKey)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		view.Render(c, http.StatusBadRequest, "login.html", view.Page{
			Title:  "Log in",
			Errors: validators.FieldErrors(err),
			Email:  data.Email,
		})
		return
	}

	user, err := service.Authenticate(c.Request.Context(), d.Users, d.Hasher, data.Email, data.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		view.Render(c, http.StatusUnauthorized, "login.html", view.Page{
			Title:   "Log in",
			Message: "Email or password is incorrect",
			Email:   data.Email,
		})
		return
	case errors.Is(err, service.ErrEmailNotVerified):
		view.Render(c, http.StatusForbidden, "login.html", view.Page{
			Title:             "Log in",
			Message:           "Ensure to verify your email first before logging in",
			Email:             data.Email,
			NeedsVerification: true,
		})
		return
	case err != nil:
		zap.L().Error("Failed to authenticate user", zap.Error(err), zap.String("requestID", requestID))
		view.InternalError(c)
		return
	}

	token, err := d.Sessions.Issue(user.Email)
	if err != nil {
		zap.L().Error("Failed to issue session", zap.Error(err), zap.String("requestID", requestID))
		view.InternalError(c)
		return
	}

	d.Sessions.SetCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
