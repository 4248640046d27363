package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/forum"
)

// HTTPService implements callback notifications via HTTP POST.
type HTTPService struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// NewHTTPService creates a Resty-backed webhook service with bounded retries.
func NewHTTPService(log zerolog.Logger) *HTTPService {
	return &HTTPService{
		httpClient: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second),
		log: log.With().Str("component", "webhook").Logger(),
	}
}

// NotifyTerminal sends a callback for a topic that reached a terminal status.
func (s *HTTPService) NotifyTerminal(ctx context.Context, topic *forum.Topic) error {
	if topic == nil || topic.CallbackURL == "" {
		return nil
	}

	event := "topic.concluded"
	if topic.Status == forum.StatusFailed {
		event = "topic.failed"
	}

	payload := Payload{
		TopicID:    topic.ID,
		Event:      event,
		Status:     string(topic.Status),
		Question:   topic.Question,
		SessionID:  topic.CallbackSessionID,
		RoundCount: topic.RoundCount,
	}
	if topic.Conclusion != nil {
		payload.Summary = topic.Conclusion.Summary
		payload.Reason = string(topic.Conclusion.Reason)
		payload.SupportingPostIDs = topic.Conclusion.SupportingPostIDs
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(topic.CallbackURL)
	if err != nil {
		s.log.Warn().Err(err).Str("topic_id", topic.ID).Str("url", topic.CallbackURL).Msg("callback delivery failed")
		return err
	}
	if resp.IsError() {
		s.log.Warn().Int("status", resp.StatusCode()).Str("topic_id", topic.ID).Msg("callback rejected")
		return fmt.Errorf("callback rejected: %s", resp.Status())
	}

	s.log.Debug().Str("topic_id", topic.ID).Str("event", event).Msg("callback delivered")
	return nil
}
