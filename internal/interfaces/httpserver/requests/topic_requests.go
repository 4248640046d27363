package requests

// CreateTopicRequest starts a new discussion.
type CreateTopicRequest struct {
	Question          string   `json:"question" binding:"required"`
	MaxRounds         int      `json:"max_rounds"`
	ExpertIDs         []string `json:"expert_ids"`
	CallbackURL       string   `json:"callback_url"`
	CallbackSessionID string   `json:"callback_session_id"`
}
