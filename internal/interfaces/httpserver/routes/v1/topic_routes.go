package v1

import (
	"github.com/gin-gonic/gin"

	"agora-server/services/forum-api/internal/interfaces/httpserver/handlers"
)

func registerTopicRoutes(router gin.IRoutes, handler *handlers.TopicHandler) {
	router.POST("/topics", handler.Create)
	router.GET("/topics", handler.List)
	router.GET("/topics/:topic_id", handler.Get)
	router.GET("/topics/:topic_id/stream", handler.Stream)
	router.GET("/topics/:topic_id/conclusion", handler.Conclusion)
	router.DELETE("/topics/:topic_id", handler.Cancel)
}
