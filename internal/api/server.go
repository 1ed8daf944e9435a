package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes onto a gin engine
func NewRouter(handler *Handler, ginMode string) *gin.Engine {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", handler.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sharpen", handler.Sharpen)
		v1.POST("/sweep", handler.Sweep)
		v1.GET("/sweeps/:sweepId/artifacts", handler.SweepArtifacts)
	}

	return router
}
