package discussion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"agora-server/services/forum-api/internal/domain/expert"
)

// Runner owns the background goroutines of running discussions. A weighted
// semaphore bounds how many runs execute concurrently; launches beyond the
// bound queue until a slot frees up.
type Runner struct {
	engine *Engine
	sem    *semaphore.Weighted
	log    zerolog.Logger

	baseCtx context.Context

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner creates a runner allowing up to maxConcurrent simultaneous runs.
func NewRunner(engine *Engine, maxConcurrent int64, log zerolog.Logger) *Runner {
	return &Runner{
		engine:  engine,
		sem:     semaphore.NewWeighted(maxConcurrent),
		log:     log.With().Str("component", "discussion_runner").Logger(),
		baseCtx: context.Background(),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start binds the runner to the application lifetime context. Runs launched
// afterwards stop when that context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.baseCtx = ctx
}

// Launch starts the discussion for a topic in the background and returns
// immediately. The run context descends from the application context, not
// from the request that created the topic.
func (r *Runner) Launch(topicID string, personas []expert.Persona) {
	runCtx, cancel := context.WithCancel(r.baseCtx)

	r.mu.Lock()
	r.cancels[topicID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(topicID)

		if err := r.sem.Acquire(runCtx, 1); err != nil {
			r.engine.fail(topicID, "discussion cancelled before start")
			return
		}
		defer r.sem.Release(1)

		r.engine.Run(runCtx, topicID, personas)
	}()
}

// Cancel signals the run for topicID to stop. It returns false when no run
// is tracked for that topic.
func (r *Runner) Cancel(topicID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.cancels[topicID]
	if ok {
		cancel()
	}
	return ok
}

func (r *Runner) release(topicID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[topicID]; ok {
		cancel()
		delete(r.cancels, topicID)
	}
}

// Shutdown cancels every running discussion and waits for the goroutines to
// drain, up to a grace period.
func (r *Runner) Shutdown(timeout time.Duration) {
	r.mu.Lock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info().Msg("all discussions drained")
	case <-time.After(timeout):
		r.log.Warn().Msg("shutdown grace period elapsed with discussions still running")
	}
}
