package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/forum"
	"agora-server/services/forum-api/internal/interfaces/httpserver/middlewares"
	"agora-server/services/forum-api/internal/interfaces/httpserver/requests"
	"agora-server/services/forum-api/internal/interfaces/httpserver/responses"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// TopicHandler exposes HTTP entrypoints for discussions.
type TopicHandler struct {
	service discussion.Service
	cfg     *config.Config
	log     zerolog.Logger
}

// NewTopicHandler constructs the handler.
func NewTopicHandler(service discussion.Service, cfg *config.Config, log zerolog.Logger) *TopicHandler {
	return &TopicHandler{
		service: service,
		cfg:     cfg,
		log:     log.With().Str("handler", "topic").Logger(),
	}
}

// Create handles POST /v1/topics
// @Summary Start a discussion
// @Description Creates a topic and launches the expert discussion in the background.
// @Tags Topics
// @Accept json
// @Produce json
// @Param request body requests.CreateTopicRequest true "Create request"
// @Success 202 {object} responses.TopicCreatedResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Router /v1/topics [post]
func (h *TopicHandler) Create(c *gin.Context) {
	var req requests.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteHTTPError(c, platformerrors.Wrap(
			platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid request body", err), h.log)
		return
	}

	topic, expertCount, err := h.service.Start(c.Request.Context(), discussion.StartParams{
		Question:          req.Question,
		MaxRounds:         req.MaxRounds,
		ExpertIDs:         req.ExpertIDs,
		CallbackURL:       req.CallbackURL,
		CallbackSessionID: req.CallbackSessionID,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusAccepted, responses.TopicCreatedResponse{
		TopicID:     topic.ID,
		Status:      string(topic.Status),
		ExpertCount: expertCount,
		MaxRounds:   topic.MaxRounds,
	})
}

// List handles GET /v1/topics
// @Summary List topics
// @Tags Topics
// @Produce json
// @Success 200 {array} responses.TopicSummaryPayload
// @Router /v1/topics [get]
func (h *TopicHandler) List(c *gin.Context) {
	summaries, err := h.service.List(c.Request.Context())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.FromSummaries(summaries))
}

// Get handles GET /v1/topics/:topic_id
// @Summary Get the full state of a topic
// @Tags Topics
// @Produce json
// @Param topic_id path string true "Topic ID"
// @Success 200 {object} responses.TopicDetailPayload
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/topics/{topic_id} [get]
func (h *TopicHandler) Get(c *gin.Context) {
	snap, err := h.service.Get(c.Request.Context(), c.Param("topic_id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.FromSnapshot(snap))
}

// Stream handles GET /v1/topics/:topic_id/stream
// @Summary Stream discussion events over SSE
// @Description Emits round, post, vote, status and conclusion events until the topic terminates.
// @Tags Topics
// @Produce text/event-stream
// @Param topic_id path string true "Topic ID"
// @Param since_round query int false "Skip events before this round"
// @Router /v1/topics/{topic_id}/stream [get]
func (h *TopicHandler) Stream(c *gin.Context) {
	sinceRound, _ := strconv.Atoi(c.Query("since_round"))

	events, err := h.service.Stream(c.Request.Context(), c.Param("topic_id"), sinceRound)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	flusher, ok := middlewares.PrepareSSE(c)
	if !ok {
		platformerrors.WriteHTTPError(c, platformerrors.New(
			platformerrors.LayerHandler, platformerrors.ErrorTypeInternal,
			"streaming unsupported by connection"), h.log)
		return
	}

	for event := range events {
		c.SSEvent(string(event.Type), event)
		flusher.Flush()
	}
	c.SSEvent("done", "[DONE]")
	flusher.Flush()
}

// Conclusion handles GET /v1/topics/:topic_id/conclusion
// @Summary Await the conclusion of a topic
// @Description Blocks until the discussion terminates or the wait deadline passes.
// @Tags Topics
// @Produce json
// @Param topic_id path string true "Topic ID"
// @Param timeout query int false "Wait deadline in seconds"
// @Success 200 {object} responses.ConclusionPayload
// @Failure 504 {object} responses.ConclusionTimeoutResponse
// @Router /v1/topics/{topic_id}/conclusion [get]
func (h *TopicHandler) Conclusion(c *gin.Context) {
	topicID := c.Param("topic_id")

	var timeout time.Duration
	if raw := c.Query("timeout"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			platformerrors.WriteHTTPError(c, platformerrors.New(
				platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
				"timeout must be a positive number of seconds"), h.log)
			return
		}
		timeout = time.Duration(seconds) * time.Second
	}

	conclusion, ok, err := h.service.AwaitConclusion(c.Request.Context(), topicID, timeout)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if !ok {
		c.JSON(http.StatusGatewayTimeout, responses.ConclusionTimeoutResponse{
			TopicID:  topicID,
			TimedOut: true,
		})
		return
	}

	if conclusion.Reason == forum.ReasonError {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "discussion failed",
			"conclusion": responses.FromConclusion(conclusion),
		})
		return
	}
	c.JSON(http.StatusOK, responses.FromConclusion(conclusion))
}

// Cancel handles DELETE /v1/topics/:topic_id
// @Summary Cancel a running discussion
// @Tags Topics
// @Produce json
// @Param topic_id path string true "Topic ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} platformerrors.HTTPErrorResponse
// @Router /v1/topics/{topic_id} [delete]
func (h *TopicHandler) Cancel(c *gin.Context) {
	topicID := c.Param("topic_id")
	if err := h.service.Cancel(c.Request.Context(), topicID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic_id": topicID, "status": "cancelling"})
}
