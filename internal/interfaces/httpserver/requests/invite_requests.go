package requests

// InviteMessage is one prior contribution in the peer's discussion history.
type InviteMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InviteRequest asks the resident responder for one opinion on a peer
// deployment's discussion.
type InviteRequest struct {
	SessionID string          `json:"session_id" binding:"required"`
	Topic     string          `json:"topic" binding:"required"`
	History   []InviteMessage `json:"history"`
	CallerID  string          `json:"caller_id"`
}
