// Package fallback provides the deterministic offline response generator
// used when the primary provider is unavailable or fails. It classifies
// the message by keyword and streams a canned response through the sink
// in small word chunks so callers observe the same shape as a live
// provider.
package fallback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
)

const weatherDubaiResponse = `I'd be happy to help you find weather information for Dubai!

To get the current weather in Dubai, I would typically:
1. Search for a reliable weather service
2. Look up current conditions including temperature, humidity, and forecast
3. Provide you with detailed weather information

Since I'm currently using a fallback system, I can't access real-time weather data, but Dubai generally has a hot desert climate with very hot summers and mild winters. The best time to visit is typically between November and March when temperatures are more comfortable.

Would you like me to help you plan activities based on Dubai's typical weather patterns?`

const helpResponse = `I'm here to help! I can assist you with various tasks including:

- Searching for information on the web
- Answering questions and providing explanations
- Helping with research and analysis
- Providing recommendations and advice
- Assisting with planning and organization

What specific task would you like help with? I'm ready to assist you with whatever you need!`

const greetingResponse = `Hello! I'm your AI assistant, ready to help you with various tasks. I can search for information, answer questions, provide explanations, and assist with many other tasks.

What would you like to work on today? I'm here to help make your tasks easier and more efficient!`

// Responder is the deterministic offline generator.
type Responder struct {
	chunkWords int
	chunkDelay time.Duration
	latency    time.Duration
}

// Compile-time check that Responder satisfies the generator port.
var _ generator.Generator = (*Responder)(nil)

// NewResponder creates a Responder with the given streaming shape.
// Zero values fall back to the config defaults.
func NewResponder(cfg config.Fallback) *Responder {
	r := &Responder{
		chunkWords: cfg.ChunkWords,
		chunkDelay: cfg.ChunkDelay,
		latency:    cfg.Latency,
	}
	if r.chunkWords < 1 {
		r.chunkWords = 3
	}
	return r
}

// Available always reports true: the fallback needs no provisioning.
func (r *Responder) Available() bool { return true }

// Generate classifies the message, simulates processing latency, and
// streams the canned response through the sink in fixed word chunks.
func (r *Responder) Generate(ctx context.Context, text string, _ []session.Message, sink generator.Sink) (string, error) {
	generator.Progress(sink, "Using fallback response system...", "fallback")

	if err := sleep(ctx, r.latency); err != nil {
		return "", err
	}

	response := r.classify(text)

	words := strings.Fields(response)
	for i := 0; i < len(words); i += r.chunkWords {
		end := min(i+r.chunkWords, len(words))
		chunk := strings.Join(words[i:end], " ")
		if sink != nil {
			sink(event.TypeAgentProgress, event.Progress{
				Message: chunk + " ",
				Step:    "streaming",
			})
		}
		if err := sleep(ctx, r.chunkDelay); err != nil {
			return "", err
		}
	}

	return response, nil
}

// classify picks a canned response by case-insensitive keyword match,
// falling back to a generic acknowledgment that echoes the input.
func (r *Responder) classify(text string) string {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "weather"):
		if strings.Contains(lower, "dubai") {
			return weatherDubaiResponse
		}
		return fmt.Sprintf("I'd be happy to help you find weather information for '%s'! I would typically search for current weather conditions, forecasts, and provide you with detailed information including temperature, humidity, wind conditions, and any weather alerts.", text)

	case strings.Contains(lower, "search"):
		return fmt.Sprintf("I'd be happy to help you search for information about '%s'! I would typically use web search tools to find the most relevant and up-to-date information, then provide you with a comprehensive summary of the results.", text)

	case strings.Contains(lower, "help"):
		return helpResponse

	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return greetingResponse

	case strings.Contains(text, "?"):
		return fmt.Sprintf("That's a great question about '%s'! I would typically search for the most accurate and up-to-date information to provide you with a comprehensive answer. I can help you find detailed explanations, relevant resources, and practical information to address your question.", text)

	default:
		return fmt.Sprintf("I understand you're asking about '%s'. I would typically search for relevant information and provide you with a detailed, helpful response. I'm designed to assist with various tasks including research, analysis, and providing information on a wide range of topics.", text)
	}
}

// sleep waits for d, returning early with the context's error if it is
// cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
