// Package conversation holds the session and message model shared by the conversation stores.
package conversation

import "time"

// DefaultMaxHistory is the number of messages a session keeps before evicting the oldest.
const DefaultMaxHistory = 10

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single entry in a session history.
type Message struct {
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Session is a server-side conversation record.
type Session struct {
	ID           string
	UserID       string
	Messages     []Message
	CreatedAt    time.Time
	LastActivity time.Time
	Metadata     map[string]string
}

// Trim keeps the max most recent messages. Order is preserved.
func Trim(msgs []Message, maxLen int) []Message {
	if maxLen <= 0 || len(msgs) <= maxLen {
		return msgs
	}
	return msgs[len(msgs)-maxLen:]
}

// Tail returns a copy of the last limit messages, or all of them when limit <= 0.
func Tail(msgs []Message, limit int) []Message {
	start := 0
	if limit > 0 && len(msgs) > limit {
		start = len(msgs) - limit
	}
	out := make([]Message, len(msgs)-start)
	copy(out, msgs[start:])
	return out
}
