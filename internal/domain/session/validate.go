package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// Validation limits for session names and message content.
const (
	MaxNameLength    = 255
	MaxContentLength = 10000
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// suspiciousPatterns match content that must never reach storage or the
// provider: script injection vectors in otherwise free-form text.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script.*?>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
}

// ValidateName checks a session name against length and content rules.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name: is required", domain.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name: cannot exceed %d characters", domain.ErrValidation, MaxNameLength)
	}
	if containsSuspiciousContent(name) {
		return fmt.Errorf("%w: name: contains potentially harmful content", domain.ErrValidation)
	}
	return nil
}

// ValidateContent checks message content against length and content rules.
func ValidateContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("%w: content: is required", domain.ErrValidation)
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("%w: content: cannot exceed %d characters", domain.ErrValidation, MaxContentLength)
	}
	if containsSuspiciousContent(content) {
		return fmt.Errorf("%w: content: contains potentially harmful content", domain.ErrValidation)
	}
	return nil
}

// ValidateID checks that an identifier is a lowercase-hex UUID.
func ValidateID(id string) error {
	if !uuidPattern.MatchString(strings.ToLower(id)) {
		return fmt.Errorf("%w: session_id: must be a valid UUID", domain.ErrValidation)
	}
	return nil
}

func containsSuspiciousContent(text string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
