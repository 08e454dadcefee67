package server

import (
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	PackHandler *PackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/packs/generate", cfg.PackHandler.GeneratePacks)
		api.POST("/packs/evaluate", cfg.PackHandler.EvaluatePacks)
		api.POST("/packs/:job_id/groups/:group_id/draft", cfg.PackHandler.RedraftAsset)
		api.POST("/packs/:job_id/groups/:group_id/render", cfg.PackHandler.RenderAsset)
		api.GET("/jobs/:id", cfg.PackHandler.GetJob)
	}

	return router
}

type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}
