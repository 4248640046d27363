package responses

import "agora-server/services/forum-api/internal/domain/expert"

// ExpertPayload describes one persona.
type ExpertPayload struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"display_name"`
	RoleDescription string  `json:"role_description"`
	Temperature     float32 `json:"temperature"`
	IsBuiltin       bool    `json:"is_builtin"`
}

// ExpertListResponse wraps the persona catalog.
type ExpertListResponse struct {
	Experts []ExpertPayload `json:"experts"`
}

// FromPersona maps a persona to its HTTP payload.
func FromPersona(persona expert.Persona) ExpertPayload {
	return ExpertPayload{
		ID:              persona.ID,
		DisplayName:     persona.DisplayName,
		RoleDescription: persona.Role,
		Temperature:     persona.Temperature,
		IsBuiltin:       persona.Builtin,
	}
}

// FromPersonas maps a persona list to HTTP payloads.
func FromPersonas(personas []expert.Persona) ExpertListResponse {
	resp := ExpertListResponse{Experts: make([]ExpertPayload, 0, len(personas))}
	for _, persona := range personas {
		resp.Experts = append(resp.Experts, FromPersona(persona))
	}
	return resp
}
