package llm

import (
	"context"

	"agora-server/services/forum-api/internal/domain/expert"
)

// Invoker is the single capability boundary to the upstream reasoning model:
// prompt in, text out. Built-in and user-defined personas are just different
// configuration values behind the same call. Failures and timeouts surface
// as External errors; the caller decides whether to tolerate them.
type Invoker interface {
	Invoke(ctx context.Context, persona expert.Persona, prompt string) (string, error)
}
