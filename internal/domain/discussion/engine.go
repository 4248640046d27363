package discussion

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
	"agora-server/services/forum-api/internal/domain/llm"
	"agora-server/services/forum-api/internal/infrastructure/metrics"
	"agora-server/services/forum-api/internal/infrastructure/observability"
	"agora-server/services/forum-api/internal/webhook"
)

// EngineConfig carries the tunables of a discussion run.
type EngineConfig struct {
	ConsensusThreshold float64
	TopPostLimit       int
	ExpertTimeout      time.Duration
}

// Engine drives one topic through its rounds: fan out to the experts, write
// their posts and votes, check for consensus, and synthesize the conclusion.
type Engine struct {
	store       forum.Store
	invoker     llm.Invoker
	notifier    webhook.Service
	cfg         EngineConfig
	synthesizer expert.Persona
	log         zerolog.Logger
}

// NewEngine creates a discussion engine.
func NewEngine(store forum.Store, invoker llm.Invoker, notifier webhook.Service, cfg EngineConfig, log zerolog.Logger) *Engine {
	return &Engine{
		store:       store,
		invoker:     invoker,
		notifier:    notifier,
		cfg:         cfg,
		synthesizer: expert.Synthesizer(),
		log:         log.With().Str("component", "discussion_engine").Logger(),
	}
}

// roundResult pairs a persona with its parsed reply for one round.
type roundResult struct {
	persona expert.Persona
	opinion opinion
	err     error
}

// Run executes the full discussion for a topic. It blocks until the topic
// reaches a terminal status. ctx cancellation stops the run between store
// writes; results of in-flight invocations are then discarded.
func (e *Engine) Run(ctx context.Context, topicID string, personas []expert.Persona) {
	log := e.log.With().Str("topic_id", topicID).Logger()
	metrics.DiscussionsStartedTotal.Inc()

	runCtx, span := observability.StartRunSpan(ctx, topicID, len(personas))
	defer span.End()

	topic, err := e.store.GetTopic(ctx, topicID)
	if err != nil {
		log.Error().Err(err).Msg("topic vanished before run start")
		return
	}

	reason := forum.ReasonRoundLimitReached
	for round := 1; round <= topic.MaxRounds; round++ {
		if ctx.Err() != nil {
			e.fail(topicID, "discussion cancelled")
			return
		}

		roundNum, err := e.store.AdvanceRound(ctx, topicID)
		if err != nil {
			e.fail(topicID, "advance round failed: "+err.Error())
			return
		}
		metrics.RoundsTotal.Inc()
		log.Info().Int("round", roundNum).Msg("round started")

		_, roundSpan := observability.StartRoundSpan(runCtx, topicID, roundNum)
		results := e.runRound(runCtx, topicID, roundNum, personas)
		roundSpan.End()

		// A cancellation that landed mid-round must not leave partial posts.
		if ctx.Err() != nil {
			e.fail(topicID, "discussion cancelled")
			return
		}

		written := e.writeRound(ctx, topicID, roundNum, results, log)
		if roundNum == 1 && written == 0 {
			e.fail(topicID, "no expert produced an opening position")
			return
		}

		if roundNum >= 2 {
			snap, err := e.store.Snapshot(ctx, topicID)
			if err == nil && consensusReached(rankPosts(snap), e.cfg.ConsensusThreshold, len(personas)) {
				reason = forum.ReasonConsensusReached
				log.Info().Int("round", roundNum).Msg("consensus reached")
				break
			}
		}
	}

	e.conclude(ctx, topicID, reason, log)
}

// runRound invokes every persona concurrently and waits for all of them. A
// persona that errors or times out simply contributes nothing this round.
func (e *Engine) runRound(ctx context.Context, topicID string, round int, personas []expert.Persona) []roundResult {
	snap, err := e.store.Snapshot(ctx, topicID)
	if err != nil {
		e.log.Error().Err(err).Str("topic_id", topicID).Msg("snapshot failed before round")
		return nil
	}
	tallies := tallyVotes(snap.Votes)

	results := make([]roundResult, len(personas))
	var wg sync.WaitGroup
	for i, persona := range personas {
		wg.Add(1)
		go func(i int, persona expert.Persona) {
			defer wg.Done()

			var prompt string
			if round == 1 {
				prompt = roundOnePrompt(snap.Topic.Question, persona)
			} else {
				prompt = discussionPrompt(snap.Topic.Question, persona, snap.Posts, tallies)
			}

			invokeCtx, cancel := context.WithTimeout(ctx, e.cfg.ExpertTimeout)
			defer cancel()

			raw, err := e.invoker.Invoke(invokeCtx, persona, prompt)
			if err != nil {
				results[i] = roundResult{persona: persona, err: err}
				return
			}
			results[i] = roundResult{persona: persona, opinion: parseOpinion(raw)}
		}(i, persona)
	}
	wg.Wait()
	return results
}

// writeRound persists the round's posts and, from round two on, the votes.
// Votes on unknown posts or a persona's own posts are dropped, not fatal.
func (e *Engine) writeRound(ctx context.Context, topicID string, round int, results []roundResult, log zerolog.Logger) int {
	written := 0
	for _, res := range results {
		if res.err != nil {
			log.Warn().Err(res.err).Str("persona", res.persona.ID).Int("round", round).Msg("expert invocation failed")
			continue
		}
		content := strings.TrimSpace(res.opinion.Content)
		if content == "" {
			log.Warn().Str("persona", res.persona.ID).Int("round", round).Msg("expert returned empty content")
			continue
		}

		if _, err := e.store.AddPost(ctx, topicID, res.persona.ID, round, content); err != nil {
			log.Warn().Err(err).Str("persona", res.persona.ID).Msg("post rejected")
			continue
		}
		metrics.PostsTotal.Inc()
		written++

		if round < 2 {
			continue
		}
		for _, ballot := range res.opinion.Votes {
			value := forum.VoteValue(ballot.Value)
			if err := e.store.UpsertVote(ctx, topicID, ballot.PostID, res.persona.ID, value); err != nil {
				log.Debug().Err(err).Str("persona", res.persona.ID).Int("post_id", ballot.PostID).Msg("vote dropped")
				continue
			}
			metrics.VotesTotal.WithLabelValues(string(value)).Inc()
		}
	}
	return written
}

// conclude ranks the posts, synthesizes the final answer from the top ones
// and moves the topic to concluded. A synthesis failure still records the
// supporting posts, but the topic fails.
func (e *Engine) conclude(ctx context.Context, topicID string, reason forum.ConclusionReason, log zerolog.Logger) {
	snap, err := e.store.Snapshot(ctx, topicID)
	if err != nil {
		e.fail(topicID, "snapshot failed before conclusion: "+err.Error())
		return
	}

	ranked := rankPosts(snap)
	limit := e.cfg.TopPostLimit
	if len(ranked) < limit {
		limit = len(ranked)
	}
	top := ranked[:limit]
	supportingIDs := make([]int, len(top))
	for i, entry := range top {
		supportingIDs[i] = entry.Post.ID
	}

	prompt := synthesisPrompt(snap.Topic.Question, snap.Topic.RoundCount, len(snap.Posts), top)
	invokeCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ExpertTimeout)
	defer cancel()

	summary, err := e.invoker.Invoke(invokeCtx, e.synthesizer, prompt)
	if err != nil {
		log.Error().Err(err).Msg("conclusion synthesis failed")
		e.terminate(topicID, forum.StatusFailed, forum.Conclusion{
			TopicID:           topicID,
			Summary:           "conclusion synthesis failed",
			SupportingPostIDs: supportingIDs,
			Reason:            forum.ReasonError,
		})
		return
	}

	log.Info().Str("reason", string(reason)).Int("supporting_posts", len(supportingIDs)).Msg("topic concluded")
	e.terminate(topicID, forum.StatusConcluded, forum.Conclusion{
		TopicID:           topicID,
		Summary:           strings.TrimSpace(summary),
		SupportingPostIDs: supportingIDs,
		Reason:            reason,
	})
}

// fail marks the topic failed with a diagnostic conclusion.
func (e *Engine) fail(topicID, message string) {
	e.log.Warn().Str("topic_id", topicID).Str("cause", message).Msg("discussion failed")
	e.terminate(topicID, forum.StatusFailed, forum.Conclusion{
		TopicID: topicID,
		Summary: message,
		Reason:  forum.ReasonError,
	})
}

// terminate applies the terminal state and fires the completion callback.
// Uses a fresh context: terminal writes must land even after cancellation.
func (e *Engine) terminate(topicID string, status forum.Status, conclusion forum.Conclusion) {
	ctx := context.Background()
	if err := e.store.SetConclusion(ctx, topicID, conclusion); err != nil {
		e.log.Error().Err(err).Str("topic_id", topicID).Msg("set conclusion failed")
	}
	if err := e.store.SetStatus(ctx, topicID, status); err != nil {
		e.log.Error().Err(err).Str("topic_id", topicID).Msg("set status failed")
	}
	metrics.DiscussionsTerminalTotal.WithLabelValues(string(status), string(conclusion.Reason)).Inc()

	topic, err := e.store.GetTopic(ctx, topicID)
	if err != nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := e.notifier.NotifyTerminal(notifyCtx, topic); err != nil {
		e.log.Warn().Err(err).Str("topic_id", topicID).Msg("completion callback failed")
	}
}
