package responses

import "agora-server/services/forum-api/internal/domain/invite"

// InviteResponsePayload is the opinion returned to a peer deployment.
type InviteResponsePayload struct {
	Content     string `json:"content"`
	ResponderID string `json:"responder_id"`
	Status      string `json:"status"`
}

// FromInviteResponse maps the domain response to its HTTP payload.
func FromInviteResponse(resp *invite.Response) InviteResponsePayload {
	return InviteResponsePayload{
		Content:     resp.Content,
		ResponderID: resp.ResponderID,
		Status:      resp.Status,
	}
}
