package v1

import (
	"github.com/gin-gonic/gin"

	"agora-server/services/forum-api/internal/interfaces/httpserver/handlers"
)

func registerInviteRoutes(router gin.IRoutes, handler *handlers.InviteHandler, auth gin.HandlerFunc) {
	router.POST("/invite", auth, handler.Respond)
}
