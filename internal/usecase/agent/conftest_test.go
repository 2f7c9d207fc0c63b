package agent

import (
	"context"
	"sync"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/profile"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/tools"
)

type mockRetriever struct {
	result retrieval.Result
}

func (m *mockRetriever) RetrieveAndFormat(context.Context, string, retrieval.Options) retrieval.Result {
	return m.result
}

// stubEmbedder and stubIndex back a real retrieval.Service.
type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1, 0, 0}, nil }
func (stubEmbedder) Available() bool { return true }
func (stubEmbedder) Info() domain.ModelInfo { return domain.ModelInfo{Available: true} }

type stubIndex struct {
	matches []domvec.Match
}

func (s stubIndex) Query(context.Context, []float32, int, domvec.Filter) ([]domvec.Match, error) {
	return s.matches, nil
}

func (stubIndex) Stats(context.Context) (domvec.Stats, error) { return domvec.Stats{Available: true}, nil }
func (stubIndex) Available() bool { return true }

type mockProfiles struct {
	mu    sync.Mutex
	calls int
}

func (m *mockProfiles) Profile(_ context.Context, credential string) profile.Profile {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if credential == "" {
		return profile.Guest()
	}
	return profile.Profile{UserID: "user-" + credential, FullName: "Test User", Role: profile.RoleDefault}
}

// mockModel answers with completeFn and records every request.
type mockModel struct {
	mu         sync.Mutex
	requests   []llm.Request
	completeFn func(req llm.Request) (llm.Response, error)
}

func (m *mockModel) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.completeFn(req)
}

func (m *mockModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type mockDispatcher struct {
	dispatchFn func(call llm.ToolCall, credential string) tools.Result
}

func (m *mockDispatcher) Specs() []llm.ToolSpec {
	return []llm.ToolSpec{{Name: "check_appointment_slots", Parameters: map[string]any{"type": "object"}}}
}

func (m *mockDispatcher) Dispatch(_ context.Context, call llm.ToolCall, credential string) tools.Result {
	return m.dispatchFn(call, credential)
}

func finalAnswer(text string) func(llm.Request) (llm.Response, error) {
	return func(llm.Request) (llm.Response, error) { return llm.Response{Content: text}, nil }
}
