package discussion_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
	forumrepo "agora-server/services/forum-api/internal/infrastructure/repository/forum"
)

// invokerFunc adapts a function to llm.Invoker.
type invokerFunc func(ctx context.Context, persona expert.Persona, prompt string) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, persona expert.Persona, prompt string) (string, error) {
	return f(ctx, persona, prompt)
}

// mockNotifier records terminal callbacks.
type mockNotifier struct {
	mu     sync.Mutex
	topics []*forum.Topic
}

func (m *mockNotifier) NotifyTerminal(_ context.Context, topic *forum.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	return nil
}

func (m *mockNotifier) notified() []*forum.Topic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*forum.Topic(nil), m.topics...)
}

func engineConfig() discussion.EngineConfig {
	return discussion.EngineConfig{
		ConsensusThreshold: 0.70,
		TopPostLimit:       5,
		ExpertTimeout:      time.Second,
	}
}

// approveFirstPost mimics a panel that opens with positions in round one and
// then unanimously approves the first post, producing consensus in round two.
func approveFirstPost(value string) invokerFunc {
	return func(_ context.Context, persona expert.Persona, prompt string) (string, error) {
		if persona.ID == "moderator" {
			return "final summary", nil
		}
		if strings.Contains(prompt, "opening the discussion") {
			return "position of " + persona.ID, nil
		}
		return `{"content": "follow-up from ` + persona.ID + `", "votes": [{"post_id": 1, "value": "` + value + `"}]}`, nil
	}
}

func TestEngineRun_ConsensusStopsEarly(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	notifier := &mockNotifier{}
	engine := discussion.NewEngine(store, approveFirstPost("approve"), notifier, engineConfig(), zerolog.Nop())

	topic, err := store.CreateTopic(context.Background(), "monolith or microservices?", forum.TopicOptions{MaxRounds: 5})
	require.NoError(t, err)

	engine.Run(context.Background(), topic.ID, expert.Builtins())

	got, err := store.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusConcluded, got.Status)
	assert.Equal(t, 2, got.RoundCount, "consensus in round two must stop the run early")

	require.NotNil(t, got.Conclusion)
	assert.Equal(t, forum.ReasonConsensusReached, got.Conclusion.Reason)
	assert.Equal(t, "final summary", got.Conclusion.Summary)
	require.NotEmpty(t, got.Conclusion.SupportingPostIDs)
	assert.Equal(t, 1, got.Conclusion.SupportingPostIDs[0], "the unanimously approved post ranks first")
	assert.LessOrEqual(t, len(got.Conclusion.SupportingPostIDs), 5)

	snap, err := store.Snapshot(context.Background(), topic.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 8, "four experts posting in two rounds")
	// The first post's author cannot vote for itself; the other three can.
	assert.Len(t, snap.Votes, 3)

	notified := notifier.notified()
	require.Len(t, notified, 1)
	assert.Equal(t, forum.StatusConcluded, notified[0].Status)
}

func TestEngineRun_RoundLimitWithoutConsensus(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	notifier := &mockNotifier{}
	engine := discussion.NewEngine(store, approveFirstPost("reject"), notifier, engineConfig(), zerolog.Nop())

	topic, err := store.CreateTopic(context.Background(), "tabs or spaces?", forum.TopicOptions{MaxRounds: 2})
	require.NoError(t, err)

	engine.Run(context.Background(), topic.ID, expert.Builtins())

	got, err := store.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusConcluded, got.Status)
	assert.Equal(t, 2, got.RoundCount)
	require.NotNil(t, got.Conclusion)
	assert.Equal(t, forum.ReasonRoundLimitReached, got.Conclusion.Reason)
	assert.Len(t, got.Conclusion.SupportingPostIDs, 5)
}

func TestEngineRun_AllExpertsFailInOpeningRound(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	notifier := &mockNotifier{}
	failing := invokerFunc(func(context.Context, expert.Persona, string) (string, error) {
		return "", errors.New("upstream down")
	})
	engine := discussion.NewEngine(store, failing, notifier, engineConfig(), zerolog.Nop())

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 3})
	require.NoError(t, err)

	engine.Run(context.Background(), topic.ID, expert.Builtins())

	got, err := store.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusFailed, got.Status)
	require.NotNil(t, got.Conclusion)
	assert.Equal(t, forum.ReasonError, got.Conclusion.Reason)

	notified := notifier.notified()
	require.Len(t, notified, 1)
	assert.Equal(t, forum.StatusFailed, notified[0].Status)
}

func TestEngineRun_PartialExpertFailureContinues(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	inner := approveFirstPost("approve")
	flaky := invokerFunc(func(ctx context.Context, persona expert.Persona, prompt string) (string, error) {
		if persona.ID == "critic" {
			return "", errors.New("persona unavailable")
		}
		return inner(ctx, persona, prompt)
	})
	engine := discussion.NewEngine(store, flaky, &mockNotifier{}, engineConfig(), zerolog.Nop())

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 5})
	require.NoError(t, err)

	engine.Run(context.Background(), topic.ID, expert.Builtins())

	got, err := store.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	// Three of four experts approving post 1 is still 3 distinct voters... but
	// one of them authored it, so only two votes land: no consensus, run to cap.
	assert.Equal(t, forum.StatusConcluded, got.Status)
	assert.Equal(t, 5, got.RoundCount)

	snap, err := store.Snapshot(context.Background(), topic.ID)
	require.NoError(t, err)
	for _, post := range snap.Posts {
		assert.NotEqual(t, "critic", post.Author)
	}
}

func TestEngineRun_SynthesisFailureFailsTopic(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	notifier := &mockNotifier{}
	inner := approveFirstPost("approve")
	noModerator := invokerFunc(func(ctx context.Context, persona expert.Persona, prompt string) (string, error) {
		if persona.ID == "moderator" {
			return "", errors.New("synthesis unavailable")
		}
		return inner(ctx, persona, prompt)
	})
	engine := discussion.NewEngine(store, noModerator, notifier, engineConfig(), zerolog.Nop())

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 5})
	require.NoError(t, err)

	engine.Run(context.Background(), topic.ID, expert.Builtins())

	got, err := store.GetTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusFailed, got.Status)
	require.NotNil(t, got.Conclusion)
	assert.Equal(t, forum.ReasonError, got.Conclusion.Reason)
	// The ranking is still preserved as a best-effort result.
	assert.NotEmpty(t, got.Conclusion.SupportingPostIDs)
}

func TestRunner_CancelFailsTopic(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	blocking := invokerFunc(func(ctx context.Context, _ expert.Persona, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	engine := discussion.NewEngine(store, blocking, &mockNotifier{}, engineConfig(), zerolog.Nop())
	runner := discussion.NewRunner(engine, 2, zerolog.Nop())
	runner.Start(context.Background())

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 3})
	require.NoError(t, err)
	runner.Launch(topic.ID, expert.Builtins())

	require.True(t, runner.Cancel(topic.ID))

	deadline := time.After(3 * time.Second)
	for {
		got, err := store.GetTopic(context.Background(), topic.ID)
		require.NoError(t, err)
		if got.Status.Terminal() {
			assert.Equal(t, forum.StatusFailed, got.Status)
			break
		}
		select {
		case <-deadline:
			t.Fatal("cancelled discussion never reached a terminal status")
		case <-time.After(10 * time.Millisecond):
		}
	}

	runner.Shutdown(time.Second)
}

func TestRunner_CancelUnknownTopic(t *testing.T) {
	engine := discussion.NewEngine(forumrepo.NewMemoryRepository(), approveFirstPost("approve"), &mockNotifier{}, engineConfig(), zerolog.Nop())
	runner := discussion.NewRunner(engine, 2, zerolog.Nop())
	assert.False(t, runner.Cancel("missing"))
}
