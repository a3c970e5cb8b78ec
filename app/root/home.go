package root

import (
	"net/http"

	"bitwise74/demo-app/app/view"

	"github.com/gin-gonic/gin"
)

func Home(c *gin.Context) {
	view.Render(c, http.StatusOK, "index.html", view.Page{Title: "Welcome"})
}
