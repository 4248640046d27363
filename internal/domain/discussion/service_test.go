package discussion_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
	forumrepo "agora-server/services/forum-api/internal/infrastructure/repository/forum"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

func serviceConfig() discussion.ServiceConfig {
	return discussion.ServiceConfig{
		DefaultMaxRounds:    3,
		MaxRoundsLimit:      20,
		PollInterval:        5 * time.Millisecond,
		ConclusionWaitLimit: 2 * time.Second,
	}
}

func newTestService(t *testing.T, store forum.Store, invoker invokerFunc) discussion.Service {
	t.Helper()
	engine := discussion.NewEngine(store, invoker, &mockNotifier{}, engineConfig(), zerolog.Nop())
	runner := discussion.NewRunner(engine, 4, zerolog.Nop())
	runner.Start(context.Background())
	t.Cleanup(func() { runner.Shutdown(2 * time.Second) })
	return discussion.NewService(store, expert.NewRegistry(), runner, serviceConfig(), zerolog.Nop())
}

func TestServiceStart_Validation(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	_, _, err := service.Start(context.Background(), discussion.StartParams{Question: "   "})
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	_, _, err = service.Start(context.Background(), discussion.StartParams{Question: "q", MaxRounds: 21})
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	_, _, err = service.Start(context.Background(), discussion.StartParams{Question: "q", MaxRounds: -1})
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	_, _, err = service.Start(context.Background(), discussion.StartParams{Question: "q", ExpertIDs: []string{"ghost"}})
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))

	_, _, err = service.Start(context.Background(), discussion.StartParams{Question: "q", ExpertIDs: []string{"critic"}})
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation), "a single expert cannot debate")
}

func TestServiceStart_DefaultsAndFilter(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	topic, expertCount, err := service.Start(context.Background(), discussion.StartParams{
		Question:  "adopt a service mesh?",
		ExpertIDs: []string{"critic", "analyst"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, expertCount)
	assert.Equal(t, 3, topic.MaxRounds, "unset max_rounds falls back to the default")
	assert.Equal(t, forum.StatusRunning, topic.Status)

	// The background run eventually terminates on its own.
	conclusion, ok, err := service.AwaitConclusion(context.Background(), topic.ID, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, conclusion)
}

func TestServiceAwaitConclusion_Timeout(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	blocking := invokerFunc(func(ctx context.Context, _ expert.Persona, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	service := newTestService(t, store, blocking)

	topic, _, err := service.Start(context.Background(), discussion.StartParams{Question: "q"})
	require.NoError(t, err)

	conclusion, ok, err := service.AwaitConclusion(context.Background(), topic.ID, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, conclusion)

	require.NoError(t, service.Cancel(context.Background(), topic.ID))
}

func TestServiceAwaitConclusion_UnknownTopic(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	_, _, err := service.AwaitConclusion(context.Background(), "missing", time.Second)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound))
}

func TestServiceCancel_TerminalTopic(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 3})
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(context.Background(), topic.ID, forum.StatusConcluded))

	err = service.Cancel(context.Background(), topic.ID)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeInvalidState))
}

func TestServiceStream_EmitsCausalOrder(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	// Assemble a finished discussion directly in the store.
	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 3})
	require.NoError(t, err)
	_, err = store.AdvanceRound(context.Background(), topic.ID)
	require.NoError(t, err)
	_, err = store.AddPost(context.Background(), topic.ID, "visionary", 1, "one")
	require.NoError(t, err)
	_, err = store.AddPost(context.Background(), topic.ID, "critic", 1, "two")
	require.NoError(t, err)
	_, err = store.AdvanceRound(context.Background(), topic.ID)
	require.NoError(t, err)
	third, err := store.AddPost(context.Background(), topic.ID, "analyst", 2, "three")
	require.NoError(t, err)
	require.NoError(t, store.UpsertVote(context.Background(), topic.ID, third.ID, "critic", forum.VoteApprove))
	require.NoError(t, store.SetConclusion(context.Background(), topic.ID, forum.Conclusion{Summary: "done", Reason: forum.ReasonRoundLimitReached}))
	require.NoError(t, store.SetStatus(context.Background(), topic.ID, forum.StatusConcluded))

	events, err := service.Stream(context.Background(), topic.ID, 0)
	require.NoError(t, err)

	var got []discussion.Event
	for event := range events {
		got = append(got, event)
	}

	types := make([]discussion.EventType, 0, len(got))
	for _, event := range got {
		types = append(types, event.Type)
	}
	assert.Equal(t, []discussion.EventType{
		discussion.EventRound, discussion.EventRound,
		discussion.EventPost, discussion.EventPost, discussion.EventPost,
		discussion.EventVote,
		discussion.EventStatus,
		discussion.EventConclusion,
	}, types)

	assert.Equal(t, 1, got[0].Round)
	assert.Equal(t, 2, got[1].Round)
	assert.Equal(t, "one", got[2].Post.Content)
	assert.Equal(t, forum.VoteApprove, got[5].Vote.Value)
	assert.Equal(t, forum.StatusConcluded, got[6].Status)
	assert.Equal(t, "done", got[7].Conclusion.Summary)
}

func TestServiceStream_SinceRoundSkipsHistory(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	topic, err := store.CreateTopic(context.Background(), "q", forum.TopicOptions{MaxRounds: 3})
	require.NoError(t, err)
	_, err = store.AdvanceRound(context.Background(), topic.ID)
	require.NoError(t, err)
	_, err = store.AddPost(context.Background(), topic.ID, "visionary", 1, "old")
	require.NoError(t, err)
	_, err = store.AdvanceRound(context.Background(), topic.ID)
	require.NoError(t, err)
	_, err = store.AddPost(context.Background(), topic.ID, "critic", 2, "new")
	require.NoError(t, err)
	require.NoError(t, store.SetConclusion(context.Background(), topic.ID, forum.Conclusion{Summary: "done", Reason: forum.ReasonRoundLimitReached}))
	require.NoError(t, store.SetStatus(context.Background(), topic.ID, forum.StatusConcluded))

	events, err := service.Stream(context.Background(), topic.ID, 2)
	require.NoError(t, err)

	var posts []string
	rounds := 0
	for event := range events {
		switch event.Type {
		case discussion.EventRound:
			rounds++
			assert.GreaterOrEqual(t, event.Round, 2)
		case discussion.EventPost:
			posts = append(posts, event.Post.Content)
		}
	}
	assert.Equal(t, 1, rounds)
	assert.Equal(t, []string{"new"}, posts)
}

func TestServiceStream_UnknownTopic(t *testing.T) {
	store := forumrepo.NewMemoryRepository()
	service := newTestService(t, store, approveFirstPost("approve"))

	_, err := service.Stream(context.Background(), "missing", 0)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound))
}
