package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/status", s.status)
		api.POST("/tryon", s.tryOnHandler)
		api.GET("/samples", s.samplesHandler)
		api.POST("/samples/filter", s.filterHandler)
		api.GET("/qr", s.qrHandler)
	}
}
