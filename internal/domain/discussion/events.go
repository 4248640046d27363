package discussion

import "agora-server/services/forum-api/internal/domain/forum"

// EventType identifies a streamed discussion event.
type EventType string

const (
	EventRound      EventType = "round"
	EventPost       EventType = "post"
	EventVote       EventType = "vote"
	EventStatus     EventType = "status"
	EventConclusion EventType = "conclusion"
)

// Event is one observable change in a running discussion, emitted in causal
// order on the stream: a round opens, its posts and votes land, status flips,
// and a terminal topic ends with its conclusion.
type Event struct {
	Type       EventType         `json:"type"`
	TopicID    string            `json:"topic_id"`
	Round      int               `json:"round,omitempty"`
	Post       *forum.Post       `json:"post,omitempty"`
	Vote       *forum.Vote       `json:"vote,omitempty"`
	Status     forum.Status      `json:"status,omitempty"`
	Conclusion *forum.Conclusion `json:"conclusion,omitempty"`
}
