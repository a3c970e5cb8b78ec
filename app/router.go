// Package app wires the handlers, middleware and templates into a router
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bitwise74/demo-app/app/root"
	"bitwise74/demo-app/app/user"
	"bitwise74/demo-app/app/view"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/pkg/middleware"
	"bitwise74/demo-app/pkg/validators"
	"bitwise74/demo-app/web"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxFormSize = 1 << 20

var cacheStore = persist.NewMemoryStore(time.Minute)

// NewRouter builds the engine. Background work started for the router stops
// when ctx is done.
func NewRouter(ctx context.Context, d *internal.Deps) (*gin.Engine, error) {
	if err := validators.RegisterBindings(); err != nil {
		return nil, fmt.Errorf("failed to register form validators, %w", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates, %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	if origins := viper.GetString("host.cors_origins"); origins != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Split(origins, ","),
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString(middleware.RequestIDKey); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
		middleware.NewSessionMiddleware(d.Sessions),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.NoRoute(func(c *gin.Context) {
		view.Render(c, http.StatusNotFound, "message.html", view.Page{
			Title:    "Page not found",
			Message:  "The page you were looking for doesn't exist.",
			Link:     "/",
			LinkText: "Back to the home page",
		})
	})

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	turnstile := middleware.NewTurnstileMiddleware()
	forms := []gin.HandlerFunc{rateLimiter, middleware.BodySizeLimiter(maxFormSize)}
	guest := middleware.RedirectIfSignedIn()

	// GET /		-> Welcome page
	router.GET("/", root.Home)

	// HEAD /heartbeat	-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// GET /static/*	-> Stylesheet and other assets
	router.Group("/static", cacheFor(60*60)).StaticFS("/", web.Static())

	// GET /signup		-> Signup form
	router.GET("/signup", guest, user.SignupPage)

	// POST /signup		-> Creates an account and sends the verification email
	router.POST("/signup", append(forms, turnstile, func(c *gin.Context) { user.UserSignup(c, d) })...)

	// GET /email-verification	-> Marks the email in the query as verified
	router.GET("/email-verification", func(c *gin.Context) { user.UserVerify(c, d) })

	// POST /resend-verification	-> Sends another verification email
	router.POST("/resend-verification", append(forms, func(c *gin.Context) { user.UserResendVerification(c, d) })...)

	// GET /login		-> Login form
	router.GET("/login", guest, user.LoginPage)

	// POST /login		-> Checks the credentials and sets the session cookie
	router.POST("/login", append(forms, func(c *gin.Context) { user.UserLogin(c, d) })...)

	// GET /logout		-> Revokes the session
	router.GET("/logout", func(c *gin.Context) { user.UserLogout(c, d) })

	// GET /dashboard	-> Page only signed in users can see
	router.GET("/dashboard", middleware.RequireSession(), func(c *gin.Context) { user.Dashboard(c, d) })

	return router, nil
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}
