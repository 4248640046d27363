package handlers

import (
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/invite"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Topic  *TopicHandler
	Expert *ExpertHandler
	Invite *InviteHandler
}

// NewProvider constructs the handler provider with domain services. The
// invite handler is nil when reciprocal participation is not configured.
func NewProvider(
	discussionService discussion.Service,
	registry expert.Registry,
	inviteService *invite.Service,
	cfg *config.Config,
	log zerolog.Logger,
) *Provider {
	provider := &Provider{
		Topic:  NewTopicHandler(discussionService, cfg, log),
		Expert: NewExpertHandler(registry, log),
	}
	if cfg.InviteEnabled() && inviteService != nil {
		provider.Invite = NewInviteHandler(inviteService, log)
	}
	return provider
}
