package discussion

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// StartParams carries the caller-supplied settings for a new discussion.
type StartParams struct {
	Question          string
	MaxRounds         int
	ExpertIDs         []string
	CallbackURL       string
	CallbackSessionID string
}

// Service is the application-facing surface of the discussion engine.
type Service interface {
	// Start validates the request, creates the topic and launches the run in
	// the background. It returns the created topic and the panel size.
	Start(ctx context.Context, params StartParams) (*forum.Topic, int, error)

	// Get returns a consistent snapshot of the topic.
	Get(ctx context.Context, topicID string) (*forum.Snapshot, error)

	// List returns summaries of all topics.
	List(ctx context.Context) ([]forum.TopicSummary, error)

	// Cancel stops a running discussion; the topic becomes failed.
	Cancel(ctx context.Context, topicID string) error

	// AwaitConclusion blocks until the topic reaches a terminal status or the
	// timeout elapses. ok is false on timeout.
	AwaitConclusion(ctx context.Context, topicID string, timeout time.Duration) (conclusion *forum.Conclusion, ok bool, err error)

	// Stream emits discussion events as they happen. The channel is closed
	// after the terminal events, or when ctx is cancelled. sinceRound skips
	// events from earlier rounds.
	Stream(ctx context.Context, topicID string, sinceRound int) (<-chan Event, error)
}

// ServiceConfig carries the service-level tunables.
type ServiceConfig struct {
	DefaultMaxRounds    int
	MaxRoundsLimit      int
	PollInterval        time.Duration
	ConclusionWaitLimit time.Duration
}

type service struct {
	store    forum.Store
	registry expert.Registry
	runner   *Runner
	cfg      ServiceConfig
	log      zerolog.Logger
}

// NewService creates the discussion service.
func NewService(store forum.Store, registry expert.Registry, runner *Runner, cfg ServiceConfig, log zerolog.Logger) Service {
	return &service{
		store:    store,
		registry: registry,
		runner:   runner,
		cfg:      cfg,
		log:      log.With().Str("component", "discussion_service").Logger(),
	}
}

func (s *service) Start(ctx context.Context, params StartParams) (*forum.Topic, int, error) {
	question := strings.TrimSpace(params.Question)
	if question == "" {
		return nil, 0, platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"question must not be empty")
	}

	maxRounds := params.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.cfg.DefaultMaxRounds
	}
	if maxRounds < 1 || maxRounds > s.cfg.MaxRoundsLimit {
		return nil, 0, platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"max_rounds must be between 1 and "+strconv.Itoa(s.cfg.MaxRoundsLimit))
	}

	personas, err := s.registry.Resolve(params.ExpertIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(personas) < 2 {
		return nil, 0, platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"a discussion needs at least two experts")
	}

	topic, err := s.store.CreateTopic(ctx, question, forum.TopicOptions{
		MaxRounds:         maxRounds,
		CallbackURL:       params.CallbackURL,
		CallbackSessionID: params.CallbackSessionID,
	})
	if err != nil {
		return nil, 0, err
	}

	s.runner.Launch(topic.ID, personas)
	s.log.Info().Str("topic_id", topic.ID).Int("experts", len(personas)).Int("max_rounds", maxRounds).Msg("discussion started")
	return topic, len(personas), nil
}

func (s *service) Get(ctx context.Context, topicID string) (*forum.Snapshot, error) {
	return s.store.Snapshot(ctx, topicID)
}

func (s *service) List(ctx context.Context) ([]forum.TopicSummary, error) {
	return s.store.ListTopics(ctx)
}

func (s *service) Cancel(ctx context.Context, topicID string) error {
	topic, err := s.store.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.Status.Terminal() {
		return platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidState,
			"topic already reached a terminal status")
	}

	if s.runner.Cancel(topicID) {
		return nil
	}

	// No tracked run for a still-running topic: terminate it directly.
	if err := s.store.SetConclusion(ctx, topicID, forum.Conclusion{
		TopicID: topicID,
		Summary: "discussion cancelled",
		Reason:  forum.ReasonError,
	}); err != nil {
		return err
	}
	return s.store.SetStatus(ctx, topicID, forum.StatusFailed)
}

func (s *service) AwaitConclusion(ctx context.Context, topicID string, timeout time.Duration) (*forum.Conclusion, bool, error) {
	if timeout <= 0 || timeout > s.cfg.ConclusionWaitLimit {
		timeout = s.cfg.ConclusionWaitLimit
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		topic, err := s.store.GetTopic(ctx, topicID)
		if err != nil {
			return nil, false, err
		}
		if topic.Status.Terminal() {
			if topic.Conclusion != nil {
				return topic.Conclusion, true, nil
			}
			// Terminal without a recorded conclusion only happens on a
			// direct cancellation race; report it as an errored run.
			return &forum.Conclusion{TopicID: topicID, Reason: forum.ReasonError}, true, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-deadline.C:
			return nil, false, nil
		case <-ticker.C:
		}
	}
}

func (s *service) Stream(ctx context.Context, topicID string, sinceRound int) (<-chan Event, error) {
	if _, err := s.store.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}

	events := make(chan Event, 32)
	go s.streamLoop(ctx, topicID, sinceRound, events)
	return events, nil
}

// streamLoop polls the store and diffs each snapshot against what it already
// emitted. Post IDs are monotonic per topic and votes are last-write-wins,
// so a max-ID watermark plus a (post, voter) -> value map capture the delta.
func (s *service) streamLoop(ctx context.Context, topicID string, sinceRound int, events chan<- Event) {
	defer close(events)

	emit := func(ev Event) bool {
		ev.TopicID = topicID
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	lastRound := 0
	if sinceRound > 1 {
		lastRound = sinceRound - 1
	}
	lastPostID := 0
	seenVotes := make(map[string]forum.VoteValue)
	var lastStatus forum.Status

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		snap, err := s.store.Snapshot(ctx, topicID)
		if err != nil {
			s.log.Warn().Err(err).Str("topic_id", topicID).Msg("stream snapshot failed")
			return
		}

		for snap.Topic.RoundCount > lastRound {
			lastRound++
			if !emit(Event{Type: EventRound, Round: lastRound}) {
				return
			}
		}

		for i := range snap.Posts {
			post := snap.Posts[i]
			if post.ID <= lastPostID || post.Round < sinceRound {
				continue
			}
			lastPostID = post.ID
			if !emit(Event{Type: EventPost, Round: post.Round, Post: &post}) {
				return
			}
		}

		for i := range snap.Votes {
			vote := snap.Votes[i]
			key := strconv.Itoa(vote.PostID) + "|" + vote.Voter
			if seenVotes[key] == vote.Value {
				continue
			}
			seenVotes[key] = vote.Value
			if !emit(Event{Type: EventVote, Vote: &vote}) {
				return
			}
		}

		if snap.Topic.Status != lastStatus {
			lastStatus = snap.Topic.Status
			if !emit(Event{Type: EventStatus, Status: lastStatus}) {
				return
			}
		}

		if snap.Topic.Status.Terminal() {
			if snap.Topic.Conclusion != nil {
				emit(Event{Type: EventConclusion, Conclusion: snap.Topic.Conclusion})
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
