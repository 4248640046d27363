package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forum-API metrics
var (
	DiscussionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "discussions_started_total",
			Help:      "Total number of discussion runs started",
		},
	)

	DiscussionsTerminalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "discussions_terminal_total",
			Help:      "Discussion runs reaching a terminal status, by conclusion reason",
		},
		[]string{"status", "reason"},
	)

	RoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "rounds_total",
			Help:      "Total number of discussion rounds executed",
		},
	)

	PostsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "posts_total",
			Help:      "Total number of posts written to the forum store",
		},
	)

	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "votes_total",
			Help:      "Total number of votes recorded, by value",
		},
		[]string{"value"},
	)

	ExpertInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "expert_invocations_total",
			Help:      "Upstream reasoning-model invocations, by persona and outcome",
		},
		[]string{"persona", "status"},
	)

	ExpertInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "expert_invocation_duration_seconds",
			Help:      "Upstream reasoning-model invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"persona"},
	)

	InviteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "forum_api",
			Name:      "invite_requests_total",
			Help:      "Reciprocal participation requests, by outcome",
		},
		[]string{"outcome"},
	)
)
