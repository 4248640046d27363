package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/interfaces/httpserver/requests"
	"agora-server/services/forum-api/internal/interfaces/httpserver/responses"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// ExpertHandler exposes HTTP entrypoints for the persona registry.
type ExpertHandler struct {
	registry expert.Registry
	log      zerolog.Logger
}

// NewExpertHandler constructs the handler.
func NewExpertHandler(registry expert.Registry, log zerolog.Logger) *ExpertHandler {
	return &ExpertHandler{
		registry: registry,
		log:      log.With().Str("handler", "expert").Logger(),
	}
}

// List handles GET /v1/experts
// @Summary List available expert personas
// @Tags Experts
// @Produce json
// @Success 200 {object} responses.ExpertListResponse
// @Router /v1/experts [get]
func (h *ExpertHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, responses.FromPersonas(h.registry.List()))
}

// Create handles POST /v1/experts
// @Summary Register a user-defined expert persona
// @Tags Experts
// @Accept json
// @Produce json
// @Param request body requests.RegisterExpertRequest true "Persona definition"
// @Success 201 {object} responses.ExpertPayload
// @Failure 409 {object} platformerrors.HTTPErrorResponse
// @Router /v1/experts [post]
func (h *ExpertHandler) Create(c *gin.Context) {
	var req requests.RegisterExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteHTTPError(c, platformerrors.Wrap(
			platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid request body", err), h.log)
		return
	}

	persona := expert.Persona{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		Role:        req.RoleDescription,
		Temperature: req.Temperature,
	}
	if err := h.registry.Register(persona); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	registered, err := h.registry.Get(persona.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.FromPersona(registered))
}
