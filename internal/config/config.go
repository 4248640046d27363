package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the forum service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"forum-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8084"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Upstream reasoning model (OpenAI-compatible).
	LLMBaseURL   string        `env:"LLM_BASE_URL" envDefault:""`
	LLMAPIKey    string        `env:"LLM_API_KEY"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMMaxTokens int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Discussion engine.
	DefaultMaxRounds         int           `env:"DEFAULT_MAX_ROUNDS" envDefault:"3"`
	MaxRoundsLimit           int           `env:"MAX_ROUNDS_LIMIT" envDefault:"20"`
	ConsensusThreshold       float64       `env:"CONSENSUS_THRESHOLD" envDefault:"0.70"`
	TopPostLimit             int           `env:"TOP_POST_LIMIT" envDefault:"5"`
	ExpertTimeout            time.Duration `env:"EXPERT_TIMEOUT" envDefault:"60s"`
	MaxConcurrentDiscussions int64         `env:"MAX_CONCURRENT_DISCUSSIONS" envDefault:"8"`
	StreamPollInterval       time.Duration `env:"STREAM_POLL_INTERVAL" envDefault:"1s"`
	ConclusionWaitLimit      time.Duration `env:"CONCLUSION_WAIT_LIMIT" envDefault:"300s"`

	// Reciprocal participation.
	InviteToken     string        `env:"INVITE_TOKEN"`
	InviteTimeout   time.Duration `env:"INVITE_TIMEOUT" envDefault:"120s"`
	InviteResponder string        `env:"INVITE_RESPONDER" envDefault:"pragmatist"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	if cfg.DefaultMaxRounds <= 0 {
		cfg.DefaultMaxRounds = 3
	}
	if cfg.MaxRoundsLimit < cfg.DefaultMaxRounds {
		cfg.MaxRoundsLimit = cfg.DefaultMaxRounds
	}
	if cfg.ConsensusThreshold <= 0 || cfg.ConsensusThreshold > 1 {
		return nil, fmt.Errorf("CONSENSUS_THRESHOLD must be in (0, 1], got %v", cfg.ConsensusThreshold)
	}
	if cfg.TopPostLimit <= 0 {
		cfg.TopPostLimit = 5
	}
	if cfg.ExpertTimeout <= 0 {
		cfg.ExpertTimeout = 60 * time.Second
	}
	if cfg.MaxConcurrentDiscussions <= 0 {
		cfg.MaxConcurrentDiscussions = 8
	}
	if cfg.StreamPollInterval <= 0 {
		cfg.StreamPollInterval = time.Second
	}
	if cfg.InviteTimeout <= 0 {
		cfg.InviteTimeout = 120 * time.Second
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// InviteEnabled reports whether the reciprocal participation endpoint is
// configured. Without a pre-shared token the endpoint is not exposed.
func (c *Config) InviteEnabled() bool {
	return strings.TrimSpace(c.InviteToken) != ""
}
