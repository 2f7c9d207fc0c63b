// Package session stores conversation sessions in Redis: a HASH of session
// attributes guarding a capped LIST of JSON-encoded messages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
)

var keyPrefix = domain.KeyPrefix + "session:"

// store is the consumer interface for session persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	AppendCapped(ctx context.Context, guardKey, key string, value []byte, maxLen int, ttl time.Duration) (bool, error)
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Repo implements usecase/conversation.Store on Redis.
type Repo struct {
	store      store
	maxHistory int
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a Redis-backed session repository. ttl <= 0 disables expiry.
func New(s store, maxHistory int, ttl time.Duration, logger *zap.Logger) *Repo {
	if maxHistory <= 0 {
		maxHistory = domconv.DefaultMaxHistory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, maxHistory: maxHistory, ttl: ttl, now: time.Now, logger: logger}
}

// CreateSession writes the session attributes hash.
func (r *Repo) CreateSession(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	now := strconv.FormatInt(r.now().UnixMilli(), 10)

	key := metaKey(id)
	if err := r.store.HSet(ctx, key, map[string]string{
		"user_id":       userID,
		"created_at":    now,
		"last_activity": now,
	}); err != nil {
		return "", fmt.Errorf("hset %s: %w", key, err)
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, key, r.ttl); err != nil {
			return "", fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return id, nil
}

// AddMessage appends atomically: the push, the trim and the TTL refresh happen in one script.
func (r *Repo) AddMessage(
	ctx context.Context, sessionID string, role domconv.Role, content string, metadata map[string]string,
) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("role %q: %w", role, domain.ErrInvalidRequest)
	}

	now := r.now()
	data, err := json.Marshal(domconv.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  maps.Clone(metadata),
	})
	if err != nil {
		return false, fmt.Errorf("marshal message: %w", err)
	}

	ok, err := r.store.AppendCapped(ctx, metaKey(sessionID), messagesKey(sessionID), data, r.maxHistory, r.ttl)
	if err != nil {
		return false, fmt.Errorf("append message %s: %w", sessionID, err)
	}
	if !ok {
		return false, nil
	}

	// last_activity is informational; a failed update does not lose the message.
	if err := r.store.HSet(ctx, metaKey(sessionID), map[string]string{
		"last_activity": strconv.FormatInt(now.UnixMilli(), 10),
	}); err != nil {
		r.logger.Warn("Failed to touch session", zap.String("session_id", sessionID), zap.Error(err))
	}
	return true, nil
}

// GetHistory reads the newest limit messages, oldest first.
func (r *Repo) GetHistory(ctx context.Context, sessionID string, limit int) ([]domconv.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	raw, err := r.store.LRange(ctx, messagesKey(sessionID), start, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", sessionID, err)
	}

	msgs := make([]domconv.Message, 0, len(raw))
	for _, b := range raw {
		var m domconv.Message
		if err := json.Unmarshal(b, &m); err != nil {
			r.logger.Warn("Skipping corrupt message", zap.String("session_id", sessionID), zap.Error(err))
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Exists reports whether the session attributes hash is present.
func (r *Repo) Exists(ctx context.Context, sessionID string) (bool, error) {
	ok, err := r.store.Exists(ctx, metaKey(sessionID))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", sessionID, err)
	}
	return ok, nil
}

func metaKey(id string) string     { return keyPrefix + id }
func messagesKey(id string) string { return keyPrefix + id + ":messages" }
