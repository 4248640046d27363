package responses

import (
	"time"

	"agora-server/services/forum-api/internal/domain/forum"
)

// TopicCreatedResponse acknowledges an accepted discussion.
type TopicCreatedResponse struct {
	TopicID     string `json:"topic_id"`
	Status      string `json:"status"`
	ExpertCount int    `json:"expert_count"`
	MaxRounds   int    `json:"max_rounds"`
}

// TopicSummaryPayload is the listing view of a topic.
type TopicSummaryPayload struct {
	TopicID    string    `json:"topic_id"`
	Question   string    `json:"question"`
	Status     string    `json:"status"`
	RoundCount int       `json:"round_count"`
	MaxRounds  int       `json:"max_rounds"`
	PostCount  int       `json:"post_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostPayload is one persona contribution.
type PostPayload struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Round     int       `json:"round"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// VotePayload is one approve/reject signal.
type VotePayload struct {
	PostID int    `json:"post_id"`
	Voter  string `json:"voter"`
	Value  string `json:"value"`
}

// ConclusionPayload is the synthesized final answer.
type ConclusionPayload struct {
	TopicID           string    `json:"topic_id"`
	Summary           string    `json:"summary"`
	SupportingPostIDs []int     `json:"supporting_post_ids"`
	Reason            string    `json:"reason"`
	CreatedAt         time.Time `json:"created_at"`
}

// TopicDetailPayload is the full state of one topic.
type TopicDetailPayload struct {
	TopicID    string             `json:"topic_id"`
	Question   string             `json:"question"`
	Status     string             `json:"status"`
	RoundCount int                `json:"round_count"`
	MaxRounds  int                `json:"max_rounds"`
	CreatedAt  time.Time          `json:"created_at"`
	Posts      []PostPayload      `json:"posts"`
	Votes      []VotePayload      `json:"votes"`
	Conclusion *ConclusionPayload `json:"conclusion,omitempty"`
}

// ConclusionTimeoutResponse is returned when the wait deadline passes before
// the discussion terminates.
type ConclusionTimeoutResponse struct {
	TopicID  string `json:"topic_id"`
	TimedOut bool   `json:"timed_out"`
}

// FromSnapshot maps a domain snapshot to its HTTP payload.
func FromSnapshot(snap *forum.Snapshot) TopicDetailPayload {
	payload := TopicDetailPayload{
		TopicID:    snap.Topic.ID,
		Question:   snap.Topic.Question,
		Status:     string(snap.Topic.Status),
		RoundCount: snap.Topic.RoundCount,
		MaxRounds:  snap.Topic.MaxRounds,
		CreatedAt:  snap.Topic.CreatedAt,
		Posts:      make([]PostPayload, 0, len(snap.Posts)),
		Votes:      make([]VotePayload, 0, len(snap.Votes)),
	}
	for _, post := range snap.Posts {
		payload.Posts = append(payload.Posts, PostPayload{
			ID:        post.ID,
			Author:    post.Author,
			Round:     post.Round,
			Content:   post.Content,
			CreatedAt: post.CreatedAt,
		})
	}
	for _, vote := range snap.Votes {
		payload.Votes = append(payload.Votes, VotePayload{
			PostID: vote.PostID,
			Voter:  vote.Voter,
			Value:  string(vote.Value),
		})
	}
	if snap.Topic.Conclusion != nil {
		conclusion := FromConclusion(snap.Topic.Conclusion)
		payload.Conclusion = &conclusion
	}
	return payload
}

// FromSummaries maps topic summaries to their HTTP payloads.
func FromSummaries(summaries []forum.TopicSummary) []TopicSummaryPayload {
	payloads := make([]TopicSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payloads = append(payloads, TopicSummaryPayload{
			TopicID:    summary.Topic.ID,
			Question:   summary.Topic.Question,
			Status:     string(summary.Topic.Status),
			RoundCount: summary.Topic.RoundCount,
			MaxRounds:  summary.Topic.MaxRounds,
			PostCount:  summary.PostCount,
			CreatedAt:  summary.Topic.CreatedAt,
		})
	}
	return payloads
}

// FromConclusion maps a domain conclusion to its HTTP payload.
func FromConclusion(conclusion *forum.Conclusion) ConclusionPayload {
	return ConclusionPayload{
		TopicID:           conclusion.TopicID,
		Summary:           conclusion.Summary,
		SupportingPostIDs: conclusion.SupportingPostIDs,
		Reason:            string(conclusion.Reason),
		CreatedAt:         conclusion.CreatedAt,
	}
}
