package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the single-message error shape: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorsBody is the validation error shape: {"errors": ["..."]}.
type ErrorsBody struct {
	Errors []string `json:"errors"`
}

const MsgUnauthorized = "Unauthorized"

func JSON(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgUnauthorized)
}

func Unprocessable(c *gin.Context, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorsBody{Errors: messages})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
