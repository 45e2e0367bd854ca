package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Strob0t/AgentRelay/internal/domain/event"
)

// wsConn adapts a coder/websocket connection to the sender seam.
type wsConn struct {
	id     string
	ws     *websocket.Conn
	cancel context.CancelFunc
}

func (c *wsConn) Send(ctx context.Context, data []byte) error {
	return c.ws.Write(ctx, websocket.MessageText, data)
}

func (c *wsConn) Close() {
	c.cancel()
	_ = c.ws.Close(websocket.StatusNormalClosure, "")
}

// HandleWS upgrades GET /ws/{id} to a WebSocket and attaches it to the
// session. The read loop echoes inbound frames to the session as
// client_message events and detects disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "session_id", sessionID, "error", err)
		return
	}

	// Detach the connection lifetime from the HTTP request so broadcasts
	// from other goroutines are not bound to this handler's context.
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConn{id: uuid.NewString(), ws: ws, cancel: cancel}

	h.attach(c, sessionID)
	slog.Info("websocket connected",
		"session_id", sessionID, "conn_id", c.id, "remote", r.RemoteAddr)

	// Greet only the new connection; siblings are not notified.
	if data, err := marshalEnvelope(event.TypeConnection, event.Connected{
		Message:   "Connected to session",
		SessionID: sessionID,
	}); err == nil {
		if err := c.Send(ctx, data); err != nil {
			slog.Debug("connection greeting failed", "session_id", sessionID, "error", err)
		}
	}

	defer func() {
		h.detach(c, sessionID)
		c.Close()
		slog.Info("websocket disconnected", "session_id", sessionID, "conn_id", c.id)
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		h.BroadcastToSession(ctx, sessionID, event.TypeClientMessage, event.ClientMessage{
			Message: string(data),
		})
	}
}
