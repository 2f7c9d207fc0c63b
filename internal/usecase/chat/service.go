// Package chat handles a chat request end to end: session resolution,
// history, the agent turn and persisting the exchange.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/agent"
)

// DefaultHistoryLimit is the number of past messages passed to the agent.
const DefaultHistoryLimit = 5

// Session owner labels. The chat layer does not resolve identities.
const (
	anonymousOwner     = "anonymous"
	authenticatedOwner = "authenticated_user"
)

// MetaToolExecuted is the assistant message metadata key carrying the turn label.
const MetaToolExecuted = "tool_executed"

// store is the conversation store surface the service needs.
type store interface {
	CreateSession(ctx context.Context, userID string) (string, error)
	AddMessage(ctx context.Context, sessionID string, role domconv.Role, content string, metadata map[string]string) (bool, error)
	GetHistory(ctx context.Context, sessionID string, limit int) ([]domconv.Message, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// Agent runs one turn.
type Agent interface {
	Run(ctx context.Context, turn agent.Turn) (agent.Reply, error)
}

// Request is an incoming chat message.
type Request struct {
	Query      string
	SessionID  string
	Credential string
}

// Response is the answer returned to the client.
type Response struct {
	Reply        string
	SessionID    string
	ToolExecuted string
}

// Service is the chat use case.
type Service struct {
	store        store
	agent        Agent
	historyLimit int
}

// New creates a chat service.
func New(s store, a Agent, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{store: s, agent: a, historyLimit: historyLimit}
}

// Chat answers one message. An unknown session id starts a fresh session,
// whose id is returned in the response.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}

	sessionID, err := s.resolveSession(ctx, req)
	if err != nil {
		return Response{}, err
	}
	ctx, log := logger.With(ctx, zap.String("session_id", sessionID))

	history, err := s.store.GetHistory(ctx, sessionID, s.historyLimit)
	if err != nil {
		log.Warn("History unavailable, answering without it", zap.Error(err))
		history = nil
	}

	reply, err := s.agent.Run(ctx, agent.Turn{
		Query:      query,
		Credential: req.Credential,
		History:    history,
	})
	if err != nil {
		return Response{}, fmt.Errorf("agent turn: %w", err)
	}

	s.record(ctx, sessionID, query, reply)

	log.Info("Chat turn completed",
		zap.String("outcome", reply.Outcome),
		zap.String("tool_executed", reply.ToolExecuted),
		zap.Int("num_sources", reply.NumSources),
	)
	return Response{Reply: reply.Text, SessionID: sessionID, ToolExecuted: reply.ToolExecuted}, nil
}

func (s *Service) resolveSession(ctx context.Context, req Request) (string, error) {
	if req.SessionID != "" {
		ok, err := s.store.Exists(ctx, req.SessionID)
		if err != nil {
			return "", fmt.Errorf("check session: %w", err)
		}
		if ok {
			return req.SessionID, nil
		}
		logger.FromContext(ctx).Info("Unknown session, starting a new one", zap.String("requested", req.SessionID))
	}

	owner := anonymousOwner
	if req.Credential != "" {
		owner = authenticatedOwner
	}
	id, err := s.store.CreateSession(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// record appends the exchange. Failures are logged: the reply is already computed.
func (s *Service) record(ctx context.Context, sessionID, query string, reply agent.Reply) {
	log := logger.FromContext(ctx)

	var meta map[string]string
	if reply.ToolExecuted != "" {
		meta = map[string]string{MetaToolExecuted: reply.ToolExecuted}
	}

	for _, m := range []struct {
		role    domconv.Role
		content string
		meta    map[string]string
	}{
		{domconv.RoleUser, query, nil},
		{domconv.RoleAssistant, reply.Text, meta},
	} {
		ok, err := s.store.AddMessage(ctx, sessionID, m.role, m.content, m.meta)
		if err != nil {
			log.Warn("Failed to record message", zap.String("role", string(m.role)), zap.Error(err))
			return
		}
		if !ok {
			log.Warn("Failed to record message", zap.Error(domain.ErrSessionNotFound))
			return
		}
	}
}
