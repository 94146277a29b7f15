package model

import "strings"

// Message roles in a conversation
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content" masq:"secret"`
}

// Conversation is the ordered multi-turn history supplied with a request
type Conversation struct {
	Messages []Message `json:"messages"`
}

// JoinText concatenates all message contents preserving turn order
func (c Conversation) JoinText() string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
