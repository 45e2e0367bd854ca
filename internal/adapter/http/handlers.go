package http

import (
	"github.com/Strob0t/AgentRelay/internal/service"
)

// Handlers bundles the services the HTTP surface exposes.
type Handlers struct {
	sessions *service.SessionService
	dispatch *service.Dispatcher
}

// NewHandlers creates the handler set.
func NewHandlers(sessions *service.SessionService, dispatch *service.Dispatcher) *Handlers {
	return &Handlers{sessions: sessions, dispatch: dispatch}
}
