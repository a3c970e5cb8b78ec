package user

import (
	"context"
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

type resendBody struct {
	Email string `form:"email" binding:"required,email,mailaddr"`
}

// UserResendVerification sends another verification link. The page looks
// the same whether or not the email belongs to an unverified account.
func UserResendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString(middleware.RequestIDKey)

	var data resendBody
	if err := c.ShouldBind(&data); err != nil {
		view.Render(c, http.StatusBadRequest, "message.html", view.Page{
			Title:  "Resend verification email",
			Errors: validators.FieldErrors(err),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mailTimeout)
	defer cancel()

	err := service.ResendVerification(ctx, d.Users, d.Mailer, d.Resends, data.Email)
	switch {
	case errors.Is(err, service.ErrResendTooSoon):
		view.Render(c, http.StatusTooManyRequests, "message.html", view.Page{
			Title:   "Resend verification email",
			Message: "A verification email was sent recently. Please wait a minute before asking for another one.",
		})
		return
	case err != nil:
		zap.L().Error("Failed to resend verification email", zap.Error(err), zap.String("requestID", requestID))

		view.Render(c, http.StatusBadGateway, "message.html", view.Page{
			Title:   "Resend verification email",
			Message: "We couldn't send the email right now. Please try again later.",
		})
		return
	}

	view.Render(c, http.StatusOK, "message.html", view.Page{
		Title:    "Check your inbox",
		Message:  "If an account with that email is waiting for verification, we've sent it a new link.",
		Link:     "/login",
		LinkText: "Go to the login page",
	})
}
