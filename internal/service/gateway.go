package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
)

// Gateway selects between the primary provider-backed generator and the
// deterministic fallback. The primary is tried whenever it reports
// available; any error degrades that single request to the fallback and
// leaves the primary selected for the next one.
type Gateway struct {
	primary  generator.Generator
	fallback generator.Generator
	metrics  *otel.Metrics
	log      *slog.Logger
}

var _ generator.Generator = (*Gateway)(nil)

// NewGateway creates a Gateway. metrics may be nil.
func NewGateway(primary, fallback generator.Generator, metrics *otel.Metrics, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{primary: primary, fallback: fallback, metrics: metrics, log: log}
}

// Available reports true: the fallback guarantees a response.
func (g *Gateway) Available() bool { return true }

// Generate routes the request to the primary when available, degrading to
// the fallback on any primary error.
func (g *Gateway) Generate(ctx context.Context, text string, history []session.Message, sink generator.Sink) (string, error) {
	if g.primary != nil && g.primary.Available() {
		out, err := g.primary.Generate(ctx, text, history, sink)
		if err == nil {
			return out, nil
		}
		g.log.Warn("primary generator failed, using fallback", "error", err)
	}

	if g.metrics != nil {
		g.metrics.FallbackResponses.Add(ctx, 1)
	}

	out, err := g.fallback.Generate(ctx, text, history, sink)
	if err != nil {
		return "", fmt.Errorf("fallback generation: %w", err)
	}
	return out, nil
}
