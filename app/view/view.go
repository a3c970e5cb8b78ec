// Package view renders the HTML pages
package view

import (
	"net/http"

	"bitwise74/demo-app/pkg/middleware"
	"bitwise74/demo-app/pkg/validators"

	"github.com/gin-gonic/gin"
)

// Page is the data every template gets. Not every page uses every field.
type Page struct {
	Title     string
	Message   string
	Errors    []validators.FieldError
	Username  string
	Email     string
	Link      string
	LinkText  string
	SignedIn  bool
	RequestID string

	MailFailed        bool
	NeedsVerification bool

	// Set on forms guarded by the turnstile middleware
	TurnstileSiteKey string
}

func Render(c *gin.Context, code int, name string, p Page) {
	p.RequestID = c.GetString(middleware.RequestIDKey)
	p.SignedIn = c.GetString(middleware.UserEmailKey) != ""

	c.HTML(code, name, p)
}

// InternalError renders the generic error page. The cause is expected to be
// logged by the caller.
func InternalError(c *gin.Context) {
	Render(c, http.StatusInternalServerError, "message.html", Page{
		Title:   "Something went wrong",
		Message: "Internal server error. Please try again later.",
	})
}
