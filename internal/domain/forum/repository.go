package forum

import "context"

// TopicOptions carries per-topic settings fixed at creation time.
type TopicOptions struct {
	MaxRounds         int
	CallbackURL       string
	CallbackSessionID string
}

// Store is the single authoritative container for topics, posts and votes of
// all concurrently running discussions. Mutating operations are serialized
// per topic; reads may proceed concurrently with writes and observe either
// the pre- or post-mutation state, never a torn record.
type Store interface {
	CreateTopic(ctx context.Context, question string, opts TopicOptions) (*Topic, error)
	GetTopic(ctx context.Context, topicID string) (*Topic, error)
	ListTopics(ctx context.Context) ([]TopicSummary, error)

	// AdvanceRound increments the topic's round counter and returns the new
	// round number. Fails with InvalidState on a non-running topic.
	AdvanceRound(ctx context.Context, topicID string) (int, error)

	// AddPost appends a post. Fails with NotFound for an unknown topic,
	// InvalidState for a non-running topic, and Validation when the round is
	// outside [1, round_count].
	AddPost(ctx context.Context, topicID, author string, round int, content string) (*Post, error)

	// UpsertVote records a vote with last-write-wins semantics per
	// (post, voter). Fails with Validation when the voter authored the post
	// or the value is malformed.
	UpsertVote(ctx context.Context, topicID string, postID int, voter string, value VoteValue) error

	// ListPosts returns posts ordered by (round, created_at, id), optionally
	// restricted to rounds >= sinceRound.
	ListPosts(ctx context.Context, topicID string, sinceRound int) ([]Post, error)

	// Snapshot returns a consistent point-in-time copy of the topic state.
	Snapshot(ctx context.Context, topicID string) (*Snapshot, error)

	// SetStatus applies a terminal transition. Repeating an already-applied
	// terminal state is a no-op; reversing a terminal state fails with
	// InvalidState.
	SetStatus(ctx context.Context, topicID string, status Status) error

	// SetConclusion records the conclusion exactly once; repeat calls after
	// the first are no-ops.
	SetConclusion(ctx context.Context, topicID string, conclusion Conclusion) error
}
