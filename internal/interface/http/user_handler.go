package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/response"
)

type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

// CheckSession GET /check_session
func (h *UserHandler) CheckSession(c *gin.Context) {
	sess := session.FromContext(c)
	if !sess.Authenticated() {
		response.Unauthorized(c)
		return
	}
	id, _ := sess.UserID()
	u, err := h.Users.GetProfile(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, application.ErrUserNotFound) {
			helpers.LogError(helpers.RequestLogger(h.Logger, c), "load session user failed", err, logrus.Fields{"user_id": id})
		}
		response.Unauthorized(c)
		return
	}
	response.JSON(c, http.StatusOK, newUserJSON(u))
}
