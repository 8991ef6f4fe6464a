package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/ideas"
	"gorm.io/gorm"
)

// BotStatusFunc reports whether the Discord bot is connected and as whom.
type BotStatusFunc func() (running bool, user string)

// Options wires the REST surface.
type Options struct {
	Config    config.Config
	Service   *ideas.Service
	DB        *gorm.DB      // pinged by /health
	Metrics   http.Handler  // served on /metrics when set
	BotStatus BotStatusFunc // nil when the bot runs in another process
}

func New(opts Options) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), RequestID())
	attachRoutes(g, opts)
	return g
}
