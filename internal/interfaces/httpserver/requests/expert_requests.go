package requests

// RegisterExpertRequest adds a user-defined persona to the registry.
type RegisterExpertRequest struct {
	ID              string  `json:"id" binding:"required"`
	DisplayName     string  `json:"display_name" binding:"required"`
	RoleDescription string  `json:"role_description" binding:"required"`
	Temperature     float32 `json:"temperature"`
}
