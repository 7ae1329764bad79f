package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
)

// Session resolves the request's session from its cookie and attaches it to
// the context. Authorization is left to the handlers.
func Session(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := mgr.Load(c)
		session.Attach(c, sess)
		if id, ok := sess.UserID(); ok {
			c.Set(CtxUserIDKey, id)
		}
		c.Next()
	}
}

const CtxUserIDKey = "userID"
