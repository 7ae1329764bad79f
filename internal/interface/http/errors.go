package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/response"
)

const (
	msgInvalidLogin   = "Invalid username or password"
	msgUsernameUnique = "Username must be unique."
)

// unprocessable answers 422 for a failed write. Anything that is not a known
// validation failure is logged and reported with its raw text.
func unprocessable(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.Is(err, application.ErrUsernameTaken):
		response.Unprocessable(c, msgUsernameUnique)
	case errors.As(err, &verr):
		response.Unprocessable(c, verr.Message)
	default:
		helpers.LogError(helpers.RequestLogger(logger, c), "request failed", err, logrus.Fields{"path": c.FullPath()})
		response.Unprocessable(c, err.Error())
	}
}
