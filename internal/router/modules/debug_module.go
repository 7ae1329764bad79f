package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

type DebugModule struct {
	Limiter gin.HandlerFunc
}

func NewDebugModule(limiter gin.HandlerFunc) *DebugModule { return &DebugModule{Limiter: limiter} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	chain := []gin.HandlerFunc{}
	if m.Limiter != nil {
		chain = append(chain, m.Limiter)
	}
	rg.GET("/debug/vars", append(chain, gin.WrapH(expvar.Handler()))...)
}
