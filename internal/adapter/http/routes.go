package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// apiTimeout bounds every REST request. The WebSocket endpoint is mounted
// outside this group and stays long-lived.
const apiTimeout = 30 * time.Second

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(apiTimeout))

		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Sessions
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.DeleteSession)

		// Messages
		r.Post("/sessions/{id}/messages", h.SendMessage)
		r.Get("/sessions/{id}/messages", h.ListMessages)
	})
}
