// Package agent runs one conversational turn: scope check, knowledge
// retrieval, prompt assembly and the model/tool loop.
package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/profile"
	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/tools"
)

// DefaultMaxIterations caps model invocations per turn.
const DefaultMaxIterations = 5

// Turn outcomes, used as metric labels.
const (
	OutcomeAnswered   = "answered"
	OutcomeDeclined   = "declined"
	OutcomeExhausted  = "exhausted"
	OutcomeModelError = "model_error"
)

// Retriever supplies knowledge context.
type Retriever interface {
	RetrieveAndFormat(ctx context.Context, query string, opts retrieval.Options) retrieval.Result
}

// ProfileResolver resolves the caller identity from its credential.
type ProfileResolver interface {
	Profile(ctx context.Context, credential string) profile.Profile
}

// Model is a chat completion backend.
type Model interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Dispatcher advertises and runs tools.
type Dispatcher interface {
	Specs() []llm.ToolSpec
	Dispatch(ctx context.Context, call llm.ToolCall, credential string) tools.Result
}

// Turn is one user question with its context.
type Turn struct {
	Query      string
	Credential string
	History    []domconv.Message
}

// Reply is the agent's answer. ToolExecuted is the category of the first
// categorized tool used, empty when none.
type Reply struct {
	Text         string
	ToolExecuted string
	Outcome      string
	NumSources   int
	Sources      []retrieval.SourceRef
}

// Config holds orchestration settings.
type Config struct {
	MaxIterations int
}

// Orchestrator wires the turn pipeline. It holds no per-turn state and is
// safe for concurrent use.
type Orchestrator struct {
	retriever Retriever
	scope     ScopeFilter
	profiles  ProfileResolver
	model     Model
	tools     Dispatcher
	maxIter   int
}

// New creates an Orchestrator.
func New(r Retriever, scope ScopeFilter, profiles ProfileResolver, model Model, d Dispatcher, cfg Config) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		retriever: r,
		scope:     scope,
		profiles:  profiles,
		model:     model,
		tools:     d,
		maxIter:   cfg.MaxIterations,
	}
}

// Run executes one turn. The only error is a model failure wrapping
// domain.ErrModelUnavailable; declines and exhaustion are normal replies.
func (o *Orchestrator) Run(ctx context.Context, turn Turn) (Reply, error) {
	log := logger.FromContext(ctx)

	knowledge := o.retriever.RetrieveAndFormat(ctx, turn.Query, retrieval.Options{})

	verdict := o.scope.Classify(ctx, ScopeQuery{Text: turn.Query, NumSources: knowledge.NumSources})
	if verdict == OutOfScope {
		log.Info("Declined off-topic question")
		metrics.AgentTurnsTotal.WithLabelValues(OutcomeDeclined).Inc()
		return Reply{Text: DeclineReply, Outcome: OutcomeDeclined}, nil
	}

	caller := o.profiles.Profile(ctx, turn.Credential)

	msgs := buildMessages(systemPrompt(caller, knowledge), turn.History, turn.Query)
	specs := o.tools.Specs()

	reply := Reply{NumSources: knowledge.NumSources, Sources: knowledge.Sources}

	for iter := 0; iter < o.maxIter; iter++ {
		resp, err := o.model.Complete(ctx, llm.Request{Messages: msgs, Tools: specs})
		if err != nil {
			metrics.AgentTurnsTotal.WithLabelValues(OutcomeModelError).Inc()
			if !errors.Is(err, domain.ErrModelUnavailable) {
				err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
			}
			return Reply{}, err
		}

		if !resp.WantsTools() {
			reply.Text = resp.Content
			reply.Outcome = OutcomeAnswered
			metrics.AgentTurnsTotal.WithLabelValues(OutcomeAnswered).Inc()
			return reply, nil
		}

		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			res := o.tools.Dispatch(ctx, call, turn.Credential)
			if reply.ToolExecuted == "" && res.Category != "" {
				reply.ToolExecuted = res.Category
			}
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Content:    res.Output,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	log.Warn("Agent iteration limit reached", zap.Int("max_iterations", o.maxIter))
	metrics.AgentTurnsTotal.WithLabelValues(OutcomeExhausted).Inc()
	reply.Text = ExhaustedReply
	reply.Outcome = OutcomeExhausted
	return reply, nil
}
