package fallback_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Strob0t/AgentRelay/internal/adapter/fallback"
	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
)

func fastResponder() *fallback.Responder {
	return fallback.NewResponder(config.Fallback{ChunkWords: 3})
}

func collectChunks() (generator.Sink, *[]string) {
	chunks := &[]string{}
	sink := func(eventType string, payload any) {
		if eventType != event.TypeAgentProgress {
			return
		}
		p, ok := payload.(event.Progress)
		if ok && p.Step == "streaming" {
			*chunks = append(*chunks, p.Message)
		}
	}
	return sink, chunks
}

func TestGenerateWeatherDubai(t *testing.T) {
	r := fastResponder()
	text, err := r.Generate(context.Background(), "What's the weather in Dubai?", nil, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(text, "Dubai") || !strings.Contains(text, "desert climate") {
		t.Fatalf("expected the Dubai weather response, got %q", text)
	}
}

func TestGenerateKeywordCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"weather generic", "weather in Paris", "weather information for 'weather in Paris'"},
		{"search", "search for go tutorials", "search for information about"},
		{"help", "can you help me", "I'm here to help"},
		{"greeting", "hello there", "Hello! I'm your AI assistant"},
		{"question", "why is the sky blue?", "That's a great question"},
		{"generic echo", "asdkjf123", "I understand you're asking about 'asdkjf123'"},
	}

	r := fastResponder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := r.Generate(context.Background(), tt.input, nil, nil)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if !strings.Contains(text, tt.want) {
				t.Fatalf("response %q does not contain %q", text, tt.want)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	r := fastResponder()
	a, err := r.Generate(context.Background(), "tell me something", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Generate(context.Background(), "tell me something", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("identical input must produce identical output")
	}
}

func TestGenerateStreamsInWordChunks(t *testing.T) {
	r := fastResponder()
	sink, chunks := collectChunks()

	text, err := r.Generate(context.Background(), "asdkjf123", nil, sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(*chunks) == 0 {
		t.Fatal("expected streamed chunks")
	}
	for i, c := range (*chunks)[:len(*chunks)-1] {
		if n := len(strings.Fields(c)); n != 3 {
			t.Fatalf("chunk %d has %d words, want 3: %q", i, n, c)
		}
	}

	reassembled := strings.Fields(strings.Join(*chunks, ""))
	if strings.Join(reassembled, " ") != strings.Join(strings.Fields(text), " ") {
		t.Fatal("streamed chunks do not reassemble the final response")
	}
}

func TestGenerateEmitsFallbackProgress(t *testing.T) {
	r := fastResponder()
	var steps []string
	sink := func(eventType string, payload any) {
		if p, ok := payload.(event.Progress); ok {
			steps = append(steps, p.Step)
		}
	}

	if _, err := r.Generate(context.Background(), "hello", nil, sink); err != nil {
		t.Fatal(err)
	}
	if len(steps) == 0 || steps[0] != "fallback" {
		t.Fatalf("expected leading fallback progress step, got %v", steps)
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	r := fallback.NewResponder(config.Fallback{
		ChunkWords: 3,
		Latency:    time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Generate(ctx, "hello", nil, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestAvailableAlwaysTrue(t *testing.T) {
	if !fastResponder().Available() {
		t.Fatal("fallback must always be available")
	}
}
