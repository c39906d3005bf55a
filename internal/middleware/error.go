package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler turns panics into a JSON 500 and gives error responses that were aborted
// without a body a JSON {error} body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Error: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if c.Writer.Written() || c.Writer.Status() < http.StatusBadRequest {
			return
		}
		msg := http.StatusText(c.Writer.Status())
		if last := c.Errors.Last(); last != nil {
			msg = last.Error()
		}
		c.JSON(c.Writer.Status(), ErrorResponse{Error: msg})
	}
}
