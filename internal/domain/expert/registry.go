package expert

import (
	"strings"
	"sync"

	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// Registry maps persona ids to invocation parameters and enumerates the
// available personas. Reads are safe for unsynchronized concurrent use;
// registration is rare and uses a coarse lock.
type Registry interface {
	Get(id string) (Persona, error)
	List() []Persona
	Register(persona Persona) error

	// Resolve returns the personas for the given ids, or all personas when
	// ids is empty. Unknown ids fail with Validation.
	Resolve(ids []string) ([]Persona, error)
}

// InMemoryRegistry is the default Registry implementation, seeded with the
// built-in personas.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	personas map[string]Persona
	order    []string
}

// NewRegistry creates a registry populated with the built-in personas.
func NewRegistry() *InMemoryRegistry {
	registry := &InMemoryRegistry{
		personas: make(map[string]Persona),
	}
	for _, persona := range Builtins() {
		registry.personas[persona.ID] = persona
		registry.order = append(registry.order, persona.ID)
	}
	return registry
}

// Get returns the persona for id.
func (r *InMemoryRegistry) Get(id string) (Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	persona, ok := r.personas[id]
	if !ok {
		return Persona{}, platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "unknown expert persona")
	}
	return persona, nil
}

// List returns all personas in registration order.
func (r *InMemoryRegistry) List() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	personas := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		personas = append(personas, r.personas[id])
	}
	return personas
}

// Register adds a user-defined persona. The persona is immutable afterwards.
func (r *InMemoryRegistry) Register(persona Persona) error {
	persona.ID = strings.TrimSpace(persona.ID)
	if persona.ID == "" {
		return platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "persona id is required")
	}
	if persona.Temperature < 0 || persona.Temperature > 2 {
		return platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "persona temperature must be in [0, 2]")
	}
	persona.Builtin = false

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.personas[persona.ID]; exists {
		return platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "persona id already registered")
	}
	r.personas[persona.ID] = persona
	r.order = append(r.order, persona.ID)
	return nil
}

// Resolve maps persona ids to personas; empty ids selects every persona.
func (r *InMemoryRegistry) Resolve(ids []string) ([]Persona, error) {
	if len(ids) == 0 {
		return r.List(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	personas := make([]Persona, 0, len(ids))
	for _, id := range ids {
		persona, ok := r.personas[id]
		if !ok {
			return nil, platformerrors.New(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"unknown expert persona: "+id)
		}
		personas = append(personas, persona)
	}
	return personas, nil
}
