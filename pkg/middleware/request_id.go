// Package middleware contains any custom middleware used in the app
package middleware

import (
	"bitwise74/demo-app/pkg/util"

	"github.com/gin-gonic/gin"
)

const RequestIDKey = "requestID"

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request and sets it as requestID
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := util.NewID(10)
		if err != nil {
			id = "unknown"
		}

		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
