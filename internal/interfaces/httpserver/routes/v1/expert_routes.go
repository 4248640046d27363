package v1

import (
	"github.com/gin-gonic/gin"

	"agora-server/services/forum-api/internal/interfaces/httpserver/handlers"
)

func registerExpertRoutes(router gin.IRoutes, handler *handlers.ExpertHandler) {
	router.GET("/experts", handler.List)
	router.POST("/experts", handler.Create)
}
