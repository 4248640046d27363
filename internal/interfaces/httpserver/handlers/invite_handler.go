package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/invite"
	"agora-server/services/forum-api/internal/interfaces/httpserver/requests"
	"agora-server/services/forum-api/internal/interfaces/httpserver/responses"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// InviteHandler answers reciprocal participation requests from peers.
type InviteHandler struct {
	service *invite.Service
	log     zerolog.Logger
}

// NewInviteHandler constructs the handler.
func NewInviteHandler(service *invite.Service, log zerolog.Logger) *InviteHandler {
	return &InviteHandler{
		service: service,
		log:     log.With().Str("handler", "invite").Logger(),
	}
}

// Respond handles POST /v1/invite
// @Summary Contribute one opinion to a peer deployment's discussion
// @Description Returns the resident responder's opinion on the unseen part of the session history. Falls back to a neutral stance on timeout.
// @Tags Invite
// @Accept json
// @Produce json
// @Param request body requests.InviteRequest true "Peer session state"
// @Success 200 {object} responses.InviteResponsePayload
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /v1/invite [post]
func (h *InviteHandler) Respond(c *gin.Context) {
	var req requests.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteHTTPError(c, platformerrors.Wrap(
			platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid request body", err), h.log)
		return
	}

	history := make([]invite.Message, 0, len(req.History))
	for _, msg := range req.History {
		history = append(history, invite.Message{Role: msg.Role, Content: msg.Content})
	}

	resp := h.service.Respond(c.Request.Context(), invite.Request{
		SessionID: req.SessionID,
		Topic:     req.Topic,
		History:   history,
		CallerID:  req.CallerID,
	})
	c.JSON(http.StatusOK, responses.FromInviteResponse(resp))
}
