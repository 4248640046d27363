package invite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/llm"
	"agora-server/services/forum-api/internal/infrastructure/metrics"
)

// Response status values.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
)

// fallbackOpinion is returned when the responder cannot produce an answer in
// time. Peers treat it as a neutral stance rather than an error.
const fallbackOpinion = "I could not form a complete opinion in time. " +
	"Based on what I have seen so far I raise no objection to the leading view; treat this as a neutral stance."

// Message is one prior contribution in the peer's discussion.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a peer's ask for one expert opinion on its own discussion.
type Request struct {
	SessionID string
	Topic     string
	History   []Message
	CallerID  string
}

// Response is the opinion returned to the peer.
type Response struct {
	Content     string `json:"content"`
	ResponderID string `json:"responder_id"`
	Status      string `json:"status"`
}

// session tracks how much of a peer session's history has already been fed
// to the responder. The count only moves forward; replayed or stale
// histories contribute nothing new.
type session struct {
	mu       sync.Mutex
	consumed int
}

// Service answers reciprocal participation requests from peer deployments.
// It is deliberately isolated from the forum store: a peer request never
// creates or touches local topics.
type Service struct {
	invoker   llm.Invoker
	responder expert.Persona
	timeout   time.Duration
	log       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates the invite service with the given responder persona.
func NewService(invoker llm.Invoker, responder expert.Persona, timeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		invoker:   invoker,
		responder: responder,
		timeout:   timeout,
		log:       log.With().Str("component", "invite").Logger(),
		sessions:  make(map[string]*session),
	}
}

// Respond produces one opinion for a peer session. Calls for the same
// session are serialized so each history message is consumed exactly once;
// on timeout or upstream failure a canned neutral opinion is returned
// instead of an error.
func (s *Service) Respond(ctx context.Context, req Request) *Response {
	sess := s.session(req.SessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var unseen []Message
	if len(req.History) > sess.consumed {
		unseen = req.History[sess.consumed:]
		sess.consumed = len(req.History)
	}

	invokeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.invoker.Invoke(invokeCtx, s.responder, s.buildPrompt(req, unseen))
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", req.SessionID).Msg("invite response fell back")
		metrics.InviteRequestsTotal.WithLabelValues(StatusFallback).Inc()
		return &Response{Content: fallbackOpinion, ResponderID: s.responder.ID, Status: StatusFallback}
	}

	metrics.InviteRequestsTotal.WithLabelValues(StatusOK).Inc()
	return &Response{Content: strings.TrimSpace(content), ResponderID: s.responder.ID, Status: StatusOK}
}

func (s *Service) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

func (s *Service) buildPrompt(req Request, unseen []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are forum expert %q. %s\n\n", s.responder.DisplayName, s.responder.Role)
	b.WriteString("A peer deployment")
	if req.CallerID != "" {
		fmt.Fprintf(&b, " (%s)", req.CallerID)
	}
	b.WriteString(" has invited you into its discussion.\n")
	fmt.Fprintf(&b, "Discussion topic: %s\n\n", req.Topic)

	if len(unseen) == 0 {
		b.WriteString("There are no new contributions since your last reply. Briefly restate your current stance.\n")
	} else {
		b.WriteString("New contributions since your last reply:\n")
		for _, msg := range unseen {
			role := msg.Role
			if role == "" {
				role = "participant"
			}
			fmt.Fprintf(&b, "- %s: %s\n", role, msg.Content)
		}
	}

	b.WriteString("\nGive your opinion in under 200 words, in character, as plain text.")
	return b.String()
}
