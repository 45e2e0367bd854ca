package http

import (
	"net/http"

	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

// acceptedResponse is the envelope returned when a message is queued.
type acceptedResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SendMessage handles POST /api/v1/sessions/{id}/messages. The message is
// validated and queued; processing happens in the background and results
// arrive over the session's WebSocket connections.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	req, ok := readJSON[session.SendMessageRequest](w, r)
	if !ok {
		return
	}
	if err := session.ValidateContent(req.Content); err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	if err := h.sessions.Exists(r.Context(), id); err != nil {
		writeDomainError(w, err, "session not found")
		return
	}

	if err := h.dispatch.Submit(r.Context(), id, req.Content); err != nil {
		writeDomainError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusAccepted, acceptedResponse{
		Status:    "processing",
		Message:   "Message received and is being processed",
		SessionID: id,
	})
}

// ListMessages handles GET /api/v1/sessions/{id}/messages.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.sessions.ListMessages(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
