package forum

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "agora-server/services/forum-api/internal/domain/forum"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

type voteKey struct {
	postID int
	voter  string
}

// topicState owns all mutable state of one topic behind its own lock, so
// concurrent expert responses within a round never interleave partial writes
// and operations on different topics never contend.
type topicState struct {
	mu         sync.RWMutex
	topic      domain.Topic
	posts      []domain.Post
	votes      map[voteKey]domain.Vote
	nextPostID int
}

// MemoryRepository is the in-memory implementation of forum.Store.
type MemoryRepository struct {
	mu     sync.RWMutex
	topics map[string]*topicState
}

// NewMemoryRepository creates an empty in-memory forum store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		topics: make(map[string]*topicState),
	}
}

// CreateTopic allocates a new topic with status running and round count 0.
func (r *MemoryRepository) CreateTopic(_ context.Context, question string, opts domain.TopicOptions) (*domain.Topic, error) {
	topic := domain.Topic{
		ID:                uuid.NewString()[:8],
		Question:          question,
		Status:            domain.StatusRunning,
		RoundCount:        0,
		MaxRounds:         opts.MaxRounds,
		CallbackURL:       opts.CallbackURL,
		CallbackSessionID: opts.CallbackSessionID,
		CreatedAt:         time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics[topic.ID] = &topicState{
		topic:      topic,
		votes:      make(map[voteKey]domain.Vote),
		nextPostID: 1,
	}

	out := topic
	return &out, nil
}

func (r *MemoryRepository) GetTopic(_ context.Context, topicID string) (*domain.Topic, error) {
	state, err := r.state(topicID)
	if err != nil {
		return nil, err
	}

	state.mu.RLock()
	defer state.mu.RUnlock()
	topic := state.topic
	if state.topic.Conclusion != nil {
		conclusion := *state.topic.Conclusion
		topic.Conclusion = &conclusion
	}
	return &topic, nil
}

func (r *MemoryRepository) ListTopics(_ context.Context) ([]domain.TopicSummary, error) {
	r.mu.RLock()
	states := make([]*topicState, 0, len(r.topics))
	for _, state := range r.topics {
		states = append(states, state)
	}
	r.mu.RUnlock()

	summaries := make([]domain.TopicSummary, 0, len(states))
	for _, state := range states {
		state.mu.RLock()
		summaries = append(summaries, domain.TopicSummary{
			Topic:     state.topic,
			PostCount: len(state.posts),
		})
		state.mu.RUnlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Topic.CreatedAt.Before(summaries[j].Topic.CreatedAt)
	})
	return summaries, nil
}

func (r *MemoryRepository) AdvanceRound(_ context.Context, topicID string) (int, error) {
	state, err := r.state(topicID)
	if err != nil {
		return 0, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.topic.Status != domain.StatusRunning {
		return 0, platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidState,
			"cannot advance round on a non-running topic")
	}
	state.topic.RoundCount++
	return state.topic.RoundCount, nil
}

func (r *MemoryRepository) AddPost(_ context.Context, topicID, author string, round int, content string) (*domain.Post, error) {
	state, err := r.state(topicID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.topic.Status != domain.StatusRunning {
		return nil, platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidState,
			"cannot post to a non-running topic")
	}
	if round < 1 || round > state.topic.RoundCount {
		return nil, platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeValidation,
			"post round is outside the topic's current round range")
	}

	post := domain.Post{
		ID:        state.nextPostID,
		TopicID:   topicID,
		Author:    author,
		Round:     round,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	state.nextPostID++
	state.posts = append(state.posts, post)

	out := post
	return &out, nil
}

func (r *MemoryRepository) UpsertVote(_ context.Context, topicID string, postID int, voter string, value domain.VoteValue) error {
	state, err := r.state(topicID)
	if err != nil {
		return err
	}

	if !value.Valid() {
		return platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeValidation,
			"vote value must be approve or reject")
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.topic.Status != domain.StatusRunning {
		return platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidState,
			"cannot vote on a non-running topic")
	}

	var target *domain.Post
	for i := range state.posts {
		if state.posts[i].ID == postID {
			target = &state.posts[i]
			break
		}
	}
	if target == nil {
		return platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "post not found")
	}
	if target.Author == voter {
		return platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeValidation,
			"a voter may not vote on its own post")
	}

	// Last write wins per (post, voter).
	state.votes[voteKey{postID: postID, voter: voter}] = domain.Vote{
		PostID:    postID,
		Voter:     voter,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *MemoryRepository) ListPosts(_ context.Context, topicID string, sinceRound int) ([]domain.Post, error) {
	state, err := r.state(topicID)
	if err != nil {
		return nil, err
	}

	state.mu.RLock()
	defer state.mu.RUnlock()
	posts := make([]domain.Post, 0, len(state.posts))
	for _, post := range state.posts {
		if post.Round >= sinceRound {
			posts = append(posts, post)
		}
	}
	sortPosts(posts)
	return posts, nil
}

func (r *MemoryRepository) Snapshot(_ context.Context, topicID string) (*domain.Snapshot, error) {
	state, err := r.state(topicID)
	if err != nil {
		return nil, err
	}

	state.mu.RLock()
	defer state.mu.RUnlock()

	snapshot := &domain.Snapshot{
		Topic: state.topic,
		Posts: append([]domain.Post(nil), state.posts...),
		Votes: make([]domain.Vote, 0, len(state.votes)),
	}
	if state.topic.Conclusion != nil {
		conclusion := *state.topic.Conclusion
		snapshot.Topic.Conclusion = &conclusion
	}
	for _, vote := range state.votes {
		snapshot.Votes = append(snapshot.Votes, vote)
	}
	sortPosts(snapshot.Posts)
	sort.Slice(snapshot.Votes, func(i, j int) bool {
		if snapshot.Votes[i].PostID != snapshot.Votes[j].PostID {
			return snapshot.Votes[i].PostID < snapshot.Votes[j].PostID
		}
		return snapshot.Votes[i].Voter < snapshot.Votes[j].Voter
	})
	return snapshot, nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, topicID string, status domain.Status) error {
	state, err := r.state(topicID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.topic.Status == status {
		return nil
	}
	if state.topic.Status.Terminal() {
		return platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidState,
			"topic status transitions are monotonic")
	}
	state.topic.Status = status
	return nil
}

func (r *MemoryRepository) SetConclusion(_ context.Context, topicID string, conclusion domain.Conclusion) error {
	state, err := r.state(topicID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.topic.Conclusion != nil {
		return nil
	}
	conclusion.TopicID = topicID
	conclusion.CreatedAt = time.Now().UTC()
	state.topic.Conclusion = &conclusion
	return nil
}

func (r *MemoryRepository) state(topicID string) (*topicState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.topics[topicID]
	if !ok {
		return nil, platformerrors.New(platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "topic not found")
	}
	return state, nil
}

func sortPosts(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Round != posts[j].Round {
			return posts[i].Round < posts[j].Round
		}
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}
