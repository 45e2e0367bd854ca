package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "agentrelay"

// Metrics holds all AgentRelay metric instruments.
type Metrics struct {
	MessagesReceived   metric.Int64Counter
	MessagesCompleted  metric.Int64Counter
	MessagesFailed     metric.Int64Counter
	FallbackResponses  metric.Int64Counter
	EventsBroadcast    metric.Int64Counter
	GenerationDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.MessagesReceived, err = meter.Int64Counter("agentrelay.messages.received",
		metric.WithDescription("Number of chat messages accepted for processing"))
	if err != nil {
		return nil, err
	}

	m.MessagesCompleted, err = meter.Int64Counter("agentrelay.messages.completed",
		metric.WithDescription("Number of chat messages processed to completion"))
	if err != nil {
		return nil, err
	}

	m.MessagesFailed, err = meter.Int64Counter("agentrelay.messages.failed",
		metric.WithDescription("Number of chat messages that failed processing"))
	if err != nil {
		return nil, err
	}

	m.FallbackResponses, err = meter.Int64Counter("agentrelay.responses.fallback",
		metric.WithDescription("Number of responses produced by the fallback generator"))
	if err != nil {
		return nil, err
	}

	m.EventsBroadcast, err = meter.Int64Counter("agentrelay.events.broadcast",
		metric.WithDescription("Number of events fanned out to session connections"))
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram("agentrelay.generation.duration_seconds",
		metric.WithDescription("Response generation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
