package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/response"
	"github.com/oksasatya/recipe-api/pkg/validation"
)

type AuthHandler struct {
	Users    *application.UserService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(users *application.UserService, sessions *session.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Logger: logger}
}

// Pointers tell a missing field apart from an empty one: missing is a binding
// error, empty reaches the domain rules.
type signupRequest struct {
	Username *string `json:"username" binding:"required"`
	Password *string `json:"password" binding:"required"`
	ImageURL string  `json:"image_url"`
	Bio      string  `json:"bio"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, validation.ToMessages(err)...)
		return
	}

	sess := session.FromContext(c)
	persisted := false
	u, err := h.Users.Signup(c.Request.Context(), application.SignupInput{
		Username: *req.Username,
		Password: *req.Password,
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
	}, func(ctx context.Context, u *entity.User) error {
		sess.Rotate()
		sess.SetUserID(u.ID)
		if err := h.Sessions.Persist(ctx, sess); err != nil {
			return err
		}
		persisted = true
		return nil
	})
	if err != nil {
		if persisted {
			h.Sessions.Discard(c.Request.Context(), sess)
		}
		sess.ClearUserID()
		unprocessable(c, h.Logger, err)
		return
	}

	if err := h.Sessions.WriteCookie(c, sess); err != nil {
		helpers.LogError(helpers.RequestLogger(h.Logger, c), "write session cookie failed", err, nil)
	}
	response.JSON(c, http.StatusCreated, newUserJSON(u))
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, msgInvalidLogin)
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, application.ErrInvalidCredentials) {
			helpers.LogError(helpers.RequestLogger(h.Logger, c), "login lookup failed", err, nil)
		}
		response.Error(c, http.StatusUnauthorized, msgInvalidLogin)
		return
	}

	sess := session.FromContext(c)
	sess.Rotate()
	sess.SetUserID(u.ID)
	if err := h.Sessions.Save(c, sess); err != nil {
		sess.ClearUserID()
		unprocessable(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, newUserJSON(u))
}

// Logout DELETE /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := session.FromContext(c)
	if !sess.Authenticated() {
		response.Unauthorized(c)
		return
	}
	if err := h.Sessions.Destroy(c, sess); err != nil {
		helpers.LogError(helpers.RequestLogger(h.Logger, c), "destroy session failed", err, nil)
	}
	response.NoContent(c)
}
