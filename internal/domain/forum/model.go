package forum

import "time"

// Status is the lifecycle state of a topic. Transitions are monotonic:
// running -> concluded or running -> failed, never back.
type Status string

const (
	StatusRunning   Status = "running"
	StatusConcluded Status = "concluded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusConcluded || s == StatusFailed
}

// VoteValue is an approve/reject signal on another author's post.
type VoteValue string

const (
	VoteApprove VoteValue = "approve"
	VoteReject  VoteValue = "reject"
)

// Valid reports whether the value is a known vote value.
func (v VoteValue) Valid() bool {
	return v == VoteApprove || v == VoteReject
}

// ConclusionReason records why a discussion terminated.
type ConclusionReason string

const (
	ReasonConsensusReached  ConclusionReason = "consensus_reached"
	ReasonRoundLimitReached ConclusionReason = "round_limit_reached"
	ReasonError             ConclusionReason = "error"
)

// Topic is one discussion run anchored to a single question.
type Topic struct {
	ID                string      `json:"id"`
	Question          string      `json:"question"`
	Status            Status      `json:"status"`
	RoundCount        int         `json:"round_count"`
	MaxRounds         int         `json:"max_rounds"`
	CallbackURL       string      `json:"callback_url,omitempty"`
	CallbackSessionID string      `json:"callback_session_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	Conclusion        *Conclusion `json:"conclusion,omitempty"`
}

// Post is one persona's contribution in one round. Append-only.
type Post struct {
	ID        int       `json:"id"`
	TopicID   string    `json:"topic_id"`
	Author    string    `json:"author"`
	Round     int       `json:"round"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is one persona's signal on another persona's post. At most one vote
// per (post, voter); a later vote from the same voter replaces the earlier.
type Vote struct {
	PostID    int       `json:"post_id"`
	Voter     string    `json:"voter"`
	Value     VoteValue `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Conclusion is the synthesized final answer plus its supporting posts,
// ordered highest-approved first.
type Conclusion struct {
	TopicID           string           `json:"topic_id"`
	Summary           string           `json:"summary"`
	SupportingPostIDs []int            `json:"supporting_post_ids"`
	Reason            ConclusionReason `json:"reason"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Snapshot is a consistent point-in-time view of a topic used for consensus
// evaluation and polling. Approval ratios are always recomputed from the raw
// votes here, never stored.
type Snapshot struct {
	Topic Topic  `json:"topic"`
	Posts []Post `json:"posts"`
	Votes []Vote `json:"votes"`
}

// TopicSummary is the listing view of a topic.
type TopicSummary struct {
	Topic     Topic `json:"topic"`
	PostCount int   `json:"post_count"`
}
