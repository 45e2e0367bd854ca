package session_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "My Chat Session", false},
		{"max length", strings.Repeat("a", 255), false},
		{"unicode", "Обсуждение планов", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", 256), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"script tag mixed case", "<ScRiPt src=x>", true},
		{"javascript scheme", "javascript:void(0)", true},
		{"vbscript scheme", "vbscript:msgbox", true},
		{"data html", "data:text/html,<b>x</b>", true},
		{"inline handler", "pic onerror=alert(1)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateName(tt.input)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "What's the weather in Dubai?", false},
		{"max length", strings.Repeat("a", 10000), false},
		{"empty", "", true},
		{"whitespace only", "\t\n  ", true},
		{"too long", strings.Repeat("a", 10001), true},
		{"script tag", "hello <script>bad()</script>", true},
		{"javascript scheme", "click javascript:run()", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateContent(tt.input)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "11111111-1111-1111-1111-111111111111", false},
		{"valid uppercase", "AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE", false},
		{"empty", "", true},
		{"not a uuid", "session-42", true},
		{"missing group", "11111111-1111-1111-1111", true},
		{"non hex", "zzzzzzzz-1111-1111-1111-111111111111", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateID(tt.input)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
