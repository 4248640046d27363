package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/config"
	"agora-server/services/forum-api/internal/domain/discussion"
	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/invite"
	"agora-server/services/forum-api/internal/infrastructure/llmprovider"
	"agora-server/services/forum-api/internal/infrastructure/logger"
	"agora-server/services/forum-api/internal/infrastructure/observability"
	forumrepo "agora-server/services/forum-api/internal/infrastructure/repository/forum"
	"agora-server/services/forum-api/internal/interfaces/httpserver"
	"agora-server/services/forum-api/internal/webhook"
)

// @title Forum API
// @version 1.0
// @description Multi-expert discussion engine: structured debate, voting, consensus and conclusion synthesis.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	store := forumrepo.NewMemoryRepository()
	registry := expert.NewRegistry()
	invoker := llmprovider.NewClient(cfg, log)
	webhookService := webhook.NewHTTPService(log)

	engine := discussion.NewEngine(store, invoker, webhookService, discussion.EngineConfig{
		ConsensusThreshold: cfg.ConsensusThreshold,
		TopPostLimit:       cfg.TopPostLimit,
		ExpertTimeout:      cfg.ExpertTimeout,
	}, log)

	runner := discussion.NewRunner(engine, cfg.MaxConcurrentDiscussions, log)
	runner.Start(ctx)
	defer func() {
		log.Info().Msg("stopping discussion runner")
		runner.Shutdown(cfg.ShutdownTimeout)
	}()

	discussionService := discussion.NewService(store, registry, runner, discussion.ServiceConfig{
		DefaultMaxRounds:    cfg.DefaultMaxRounds,
		MaxRoundsLimit:      cfg.MaxRoundsLimit,
		PollInterval:        cfg.StreamPollInterval,
		ConclusionWaitLimit: cfg.ConclusionWaitLimit,
	}, log)

	var inviteService *invite.Service
	if cfg.InviteEnabled() {
		responder, err := registry.Get(cfg.InviteResponder)
		if err != nil {
			log.Fatal().Err(err).Str("responder", cfg.InviteResponder).Msg("invite responder persona not found")
		}
		inviteService = invite.NewService(invoker, responder, cfg.InviteTimeout, log)
	}

	httpServer := httpserver.New(cfg, log, discussionService, registry, inviteService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
