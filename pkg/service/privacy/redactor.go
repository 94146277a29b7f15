package privacy

import (
	"regexp"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
)

// Placeholder replaces every redacted span
const Placeholder = "[REDACTED]"

// Redaction patterns, applied in order: emails first so their digits do
// not get caught by the number patterns.
var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	longNumPattern  = regexp.MustCompile(`\b\d{4,}\b`)
	fullNamePattern = regexp.MustCompile(`\b[A-Z][a-z]{2,}\s[A-Z][a-z]{2,}\b`)
)

// Redactor scrubs likely personal identifiers from free text before it
// reaches persistence or logs. Pattern-based and conservative: it
// over-redacts rather than leak.
type Redactor struct {
	enabled bool
}

// New creates a Redactor. Disabled, it passes text through unchanged.
func New(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Enabled reports whether redaction is active
func (r *Redactor) Enabled() bool {
	return r.enabled
}

// Redact replaces emails, phone numbers, long digit runs and
// capitalized full names with the placeholder.
func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}

	text = emailPattern.ReplaceAllString(text, Placeholder)
	text = phonePattern.ReplaceAllString(text, Placeholder)
	text = longNumPattern.ReplaceAllString(text, Placeholder)
	text = fullNamePattern.ReplaceAllString(text, Placeholder)

	return text
}

// RedactConversation returns a copy with every message body redacted
func (r *Redactor) RedactConversation(conv model.Conversation) model.Conversation {
	if !r.enabled {
		return conv
	}

	out := model.Conversation{Messages: make([]model.Message, len(conv.Messages))}
	for i, msg := range conv.Messages {
		out.Messages[i] = model.Message{
			Role:    msg.Role,
			Content: r.Redact(msg.Content),
		}
	}
	return out
}
