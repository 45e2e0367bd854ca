// Package anthropic provides the primary response generator backed by the
// Anthropic Messages API with incremental (SSE) streaming.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
	"github.com/Strob0t/AgentRelay/internal/resilience"
)

const (
	apiVersion = "2023-06-01"
	// historyWindow bounds how many prior turns are replayed to the model.
	historyWindow = 10
)

const systemPrompt = `You are a helpful AI assistant. You can help users with
searching for information, analyzing data, answering questions, providing
explanations, and helping with tasks. Be conversational, helpful, and provide
detailed responses when appropriate.`

// Client talks to the Anthropic Messages API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// Compile-time check that Client satisfies the generator port.
var _ generator.Generator = (*Client)(nil)

// NewClient creates a generator backed by the Anthropic API. When the key
// is missing or malformed the client is still returned but reports itself
// unavailable; it must not be selected for generation.
func NewClient(cfg config.Anthropic) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}

	if err := validateKey(cfg.APIKey); err != nil {
		slog.Warn("anthropic client unavailable", "reason", err)
		return c
	}
	c.apiKey = cfg.APIKey
	return c
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Available reports whether the client was provisioned with a usable key.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// validateKey applies the same shape checks the key gets at provisioning
// time: non-empty, "sk-" prefix, minimum length.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("api key not set")
	}
	if !strings.HasPrefix(key, "sk-") {
		return fmt.Errorf("api key must start with 'sk-'")
	}
	if len(key) < 20 {
		return fmt.Errorf("api key too short")
	}
	return nil
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
	Stream    bool         `json:"stream"`
}

// streamEvent is the subset of Anthropic SSE events we consume.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// Generate calls the Messages API with the conversation history and the
// new user text, forwarding each streamed text delta through the sink.
// The accumulated text is returned as the authoritative final response.
func (c *Client) Generate(ctx context.Context, text string, history []session.Message, sink generator.Sink) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("anthropic client not initialized")
	}

	generator.Progress(sink, "Generating response...", "generating")

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  buildMessages(text, history),
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal messages request: %w", err)
	}

	var result string
	call := func() error {
		var callErr error
		result, callErr = c.stream(ctx, body, sink)
		return callErr
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return "", err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return "", err
	}
	return result, nil
}

// buildMessages replays the last historyWindow prior turns (oldest-first,
// system turns skipped) and appends the new user text last.
func buildMessages(text string, history []session.Message) []apiMessage {
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}

	msgs := make([]apiMessage, 0, len(history)-start+1)
	for _, m := range history[start:] {
		if m.Role == session.RoleSystem || m.Content == "" {
			continue
		}
		role := "assistant"
		if m.Role == session.RoleUser {
			role = "user"
		}
		msgs = append(msgs, apiMessage{Role: role, Content: m.Content})
	}
	return append(msgs, apiMessage{Role: "user", Content: text})
}

func (c *Client) stream(ctx context.Context, body []byte, sink generator.Sink) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: http request: %v", domain.ErrProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: anthropic API error %d: %s", domain.ErrProvider, resp.StatusCode, string(data))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			slog.Debug("skipping unparseable stream event", "error", err)
			continue
		}
		if ev.Type == "content_block_delta" && ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
			full.WriteString(ev.Delta.Text)
			if sink != nil {
				sink(event.TypeAgentProgress, event.Progress{
					Message: ev.Delta.Text,
					Step:    "streaming",
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return full.String(), nil
}
