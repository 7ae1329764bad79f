package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
)

// AuthModule serves the session lifecycle:
// POST /signup, POST /login, GET /check_session, DELETE /logout.
type AuthModule struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Limiter gin.HandlerFunc
}

func NewAuthModule(auth *handlers.AuthHandler, users *handlers.UserHandler, limiter gin.HandlerFunc) *AuthModule {
	return &AuthModule{Auth: auth, Users: users, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	public := []gin.HandlerFunc{}
	if m.Limiter != nil {
		public = append(public, m.Limiter)
	}
	rg.POST("/signup", append(public, m.Auth.Signup)...)
	rg.POST("/login", append(public, m.Auth.Login)...)

	rg.GET("/check_session", m.Users.CheckSession)
	rg.DELETE("/logout", m.Auth.Logout)
}
