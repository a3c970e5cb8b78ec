// Package user contains the account handlers: signup, email verification,
// login, logout and the dashboard
package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bitwise74/demo-app/app/view"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/middleware"
	"bitwise74/demo-app/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const mailTimeout = 30 * time.Second

type signupBody struct {
	Username string `form:"username" binding:"required,max=64"`
	Email    string `form:"email" binding:"required,email,mailaddr,max=254"`
	Password string `form:"password" binding:"required,max=255"`
}

func SignupPage(c *gin.Context) {
	renderSignup(c, http.StatusOK, view.Page{})
}

func renderSignup(c *gin.Context, code int, p view.Page) {
	p.Title = "Sign Up"
	if viper.GetBool("cloudflare.turnstile.enabled") {
		p.TurnstileSiteKey = viper.GetString("cloudflare.turnstile.site_key")
	}

	view.Render(c, code, "signup.html", p)
}

func UserSignup(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString(middleware.RequestIDKey)

	var data signupBody
	if err := c.ShouldBind(&data); err != nil {
		renderSignup(c, http.StatusBadRequest, view.Page{
			Errors:   validators.FieldErrors(err),
			Username: data.Username,
			Email:    data.Email,
		})
		return
	}

	if err := d.Mailer.CheckRecipient(data.Email); err != nil {
		renderSignup(c, http.StatusBadRequest, view.Page{
			Errors:   []validators.FieldError{{Key: "email", Value: "can't be used for an account"}},
			Username: data.Username,
		})
		return
	}

	hash, err := d.Hasher.Hash(data.Password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		view.InternalError(c)
		return
	}

	user, err := d.Users.CreateUser(c.Request.Context(), store.NewUser{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			renderSignup(c, http.StatusConflict, view.Page{
				Message:  "We couldn't create an account with these details. If you already have an account, try logging in.",
				Username: data.Username,
			})
			return
		}

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		view.InternalError(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mailTimeout)
	defer cancel()

	// The account stays around unverified if this fails, the user can ask
	// for another email from the page we render
	if err := d.Mailer.SendVerificationMail(ctx, user.Username, user.Email); err != nil {
		zap.L().Error("Failed to send verification email",
			zap.Error(err),
			zap.String("userID", user.ID),
			zap.String("requestID", requestID),
		)

		view.Render(c, http.StatusBadGateway, "confirm-email.html", view.Page{
			Title:      "Confirm your email",
			Email:      user.Email,
			MailFailed: true,
		})
		return
	}

	zap.L().Info("User signed up", zap.String("userID", user.ID), zap.String("requestID", requestID))

	view.Render(c, http.StatusOK, "confirm-email.html", view.Page{
		Title: "Confirm your email",
		Email: user.Email,
	})
}
