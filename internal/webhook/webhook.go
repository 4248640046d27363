package webhook

import (
	"context"

	"agora-server/services/forum-api/internal/domain/forum"
)

// Service delivers completion callbacks for topics that were created with a
// callback URL, so an orchestrating agent can be told when its discussion is
// done instead of polling.
type Service interface {
	// NotifyTerminal sends a callback for a topic that reached a terminal
	// status. Topics without a callback URL are skipped silently.
	NotifyTerminal(ctx context.Context, topic *forum.Topic) error
}

// Payload is the structure sent to callback URLs.
type Payload struct {
	TopicID           string `json:"topic_id"`
	Event             string `json:"event"` // "topic.concluded" or "topic.failed"
	Status            string `json:"status"`
	Question          string `json:"question"`
	SessionID         string `json:"session_id,omitempty"`
	RoundCount        int    `json:"round_count"`
	Summary           string `json:"summary,omitempty"`
	Reason            string `json:"reason,omitempty"`
	SupportingPostIDs []int  `json:"supporting_post_ids,omitempty"`
}
