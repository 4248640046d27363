package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/interfaces/httpserver/handlers"
	"agora-server/services/forum-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
	log      zerolog.Logger
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, cfg *config.Config, log zerolog.Logger) *Routes {
	return &Routes{
		handlers: handlerProvider,
		cfg:      cfg,
		log:      log,
	}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerTopicRoutes(group, r.handlers.Topic)
	registerExpertRoutes(group, r.handlers.Expert)

	// Reciprocal participation is only exposed when a token is configured.
	if r.handlers.Invite != nil {
		registerInviteRoutes(group, r.handlers.Invite, middlewares.BearerAuth(r.cfg.InviteToken, r.log))
	}
}
