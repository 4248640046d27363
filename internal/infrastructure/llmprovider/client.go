package llmprovider

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/infrastructure/metrics"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// Client implements llm.Invoker against an OpenAI-compatible endpoint.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	log       zerolog.Logger
}

// NewClient builds the chat-completion client from config.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientConfig.BaseURL = cfg.LLMBaseURL
	}

	return &Client{
		api:       openai.NewClientWithConfig(clientConfig),
		model:     cfg.LLMModel,
		maxTokens: cfg.LLMMaxTokens,
		timeout:   cfg.LLMTimeout,
		log:       log.With().Str("component", "llmprovider").Logger(),
	}
}

// Invoke performs one chat completion with the persona's role prompt and
// sampling temperature. Each call carries its own timeout.
func (c *Client) Invoke(ctx context.Context, persona expert.Persona, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: persona.Temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: persona.Role},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	metrics.ExpertInvocationDuration.WithLabelValues(persona.ID).Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.ExpertInvocationsTotal.WithLabelValues(persona.ID, "error").Inc()
		c.log.Warn().Err(err).Str("persona", persona.ID).Msg("chat completion failed")
		return "", platformerrors.Wrap(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ExpertInvocationsTotal.WithLabelValues(persona.ID, "error").Inc()
		return "", platformerrors.New(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"chat completion returned no choices")
	}

	metrics.ExpertInvocationsTotal.WithLabelValues(persona.ID, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
