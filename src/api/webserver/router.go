package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func attachRoutes(r *gin.Engine, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.Config.Origins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
	}))

	healthH := NewHealth(opts.DB, opts.BotStatus)
	r.GET("/health", healthH.Health)
	r.GET("/bot-status", healthH.Bot)
	r.GET("/ping", healthH.Ping)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	ideaH := NewIdeas(opts.Service)
	userH := NewUsers(opts.Service)

	api := r.Group("/api")
	api.Use(JWTMiddleware([]byte(opts.Config.JWTSecret), opts.Service))
	{
		api.GET("/auth/user", userH.Current)

		api.GET("/ideas", ideaH.List)
		api.POST("/ideas", ideaH.Create)
		api.GET("/ideas/:ideaId", ideaH.Get)
		api.POST("/ideas/:ideaId/vote", ideaH.Vote)
		api.PATCH("/ideas/:ideaId/status", ideaH.SetStatus)

		api.PATCH("/users/role", userH.SetRole)
		api.GET("/stats", userH.Stats)
	}
}
