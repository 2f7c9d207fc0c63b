// Package conversation keeps per-session chat history.
package conversation

import (
	"context"

	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
)

// Store is the conversation session contract shared by the memory and Redis backends.
type Store interface {
	// CreateSession starts an empty session and returns its opaque id.
	CreateSession(ctx context.Context, userID string) (string, error)
	// AddMessage appends to the session, evicting the oldest entries beyond the history cap.
	// Returns false when the session does not exist.
	AddMessage(ctx context.Context, sessionID string, role domconv.Role, content string, metadata map[string]string) (bool, error)
	// GetHistory returns messages oldest first; the last limit when limit > 0.
	// Unknown sessions yield an empty history.
	GetHistory(ctx context.Context, sessionID string, limit int) ([]domconv.Message, error)
	// Exists reports whether the session is known.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
