//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/forum"
	"agora-server/services/forum-api/internal/domain/invite"
	"agora-server/services/forum-api/internal/domain/llm"
	"agora-server/services/forum-api/internal/infrastructure/llmprovider"
	"agora-server/services/forum-api/internal/infrastructure/logger"
	forumrepo "agora-server/services/forum-api/internal/infrastructure/repository/forum"
	"agora-server/services/forum-api/internal/interfaces/httpserver"
	"agora-server/services/forum-api/internal/webhook"
)

var forumSet = wire.NewSet(
	forumrepo.NewMemoryRepository,
	wire.Bind(new(forum.Store), new(*forumrepo.MemoryRepository)),
	expert.NewRegistry,
	wire.Bind(new(expert.Registry), new(*expert.InMemoryRegistry)),
	llmprovider.NewClient,
	wire.Bind(new(llm.Invoker), new(*llmprovider.Client)),
	newWebhookService,
	wire.Bind(new(webhook.Service), new(*webhook.HTTPService)),
	newEngineConfig,
	discussion.NewEngine,
	newRunner,
	newServiceConfig,
	discussion.NewService,
	newInviteService,
)

// BuildApplication demonstrates how to assemble the forum service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		forumSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newWebhookService(log zerolog.Logger) *webhook.HTTPService {
	return webhook.NewHTTPService(log)
}

func newEngineConfig(cfg *config.Config) discussion.EngineConfig {
	return discussion.EngineConfig{
		ConsensusThreshold: cfg.ConsensusThreshold,
		TopPostLimit:       cfg.TopPostLimit,
		ExpertTimeout:      cfg.ExpertTimeout,
	}
}

func newRunner(ctx context.Context, engine *discussion.Engine, cfg *config.Config, log zerolog.Logger) *discussion.Runner {
	runner := discussion.NewRunner(engine, cfg.MaxConcurrentDiscussions, log)
	runner.Start(ctx)
	return runner
}

func newServiceConfig(cfg *config.Config) discussion.ServiceConfig {
	return discussion.ServiceConfig{
		DefaultMaxRounds:    cfg.DefaultMaxRounds,
		MaxRoundsLimit:      cfg.MaxRoundsLimit,
		PollInterval:        cfg.StreamPollInterval,
		ConclusionWaitLimit: cfg.ConclusionWaitLimit,
	}
}

func newInviteService(cfg *config.Config, invoker llm.Invoker, registry expert.Registry, log zerolog.Logger) (*invite.Service, error) {
	if !cfg.InviteEnabled() {
		return nil, nil
	}
	responder, err := registry.Get(cfg.InviteResponder)
	if err != nil {
		return nil, err
	}
	return invite.NewService(invoker, responder, cfg.InviteTimeout, log), nil
}
