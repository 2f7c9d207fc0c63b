package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
)

// capturedChatRequest is the subset of the request body the tests inspect.
type capturedChatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role       string `json:"role"`
		Content    string `json:"content"`
		ToolCallID string `json:"tool_call_id"`
		ToolCalls  []struct {
			ID       string `json:"id"`
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"messages"`
	Tools []struct {
		Type     string `json:"type"`
		Function struct {
			Name       string         `json:"name"`
			Parameters map[string]any `json:"parameters"`
		} `json:"function"`
	} `json:"tools"`
}

func chatServer(t *testing.T, reply string, captured *capturedChatRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestChatModel(url string) *ChatModel {
	return NewChatModel(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-chat",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

func TestChatModel_CompleteContent(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, `{
		"id": "c1",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "Brake pads last about 40,000 km."}}],
		"usage": {"prompt_tokens": 30, "completion_tokens": 8, "total_tokens": 38}
	}`, &captured)

	resp, err := newTestChatModel(server.URL).Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a service assistant."},
			{Role: llm.RoleUser, Content: "How long do brake pads last?"},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "Brake pads last about 40,000 km." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.WantsTools() {
		t.Error("expected no tool calls")
	}
	if resp.PromptTokens != 30 || resp.CompletionTokens != 8 {
		t.Errorf("usage = %d/%d", resp.PromptTokens, resp.CompletionTokens)
	}

	if captured.Model != "test-chat" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", captured.Messages)
	}
	if len(captured.Tools) != 0 {
		t.Errorf("tools should be omitted, got %d", len(captured.Tools))
	}
	if captured.Temperature <= 0 || captured.Temperature > 1e-6 {
		t.Errorf("temperature = %g, want near-zero", captured.Temperature)
	}
}

func TestChatModel_CompleteToolCalls(t *testing.T) {
	var captured capturedChatRequest
	server := chatServer(t, `{
		"id": "c2",
		"choices": [{"index": 0, "finish_reason": "tool_calls",
			"message": {"role": "assistant", "content": "",
				"tool_calls": [{"id": "call_1", "type": "function",
					"function": {"name": "check_appointment_slots", "arguments": "{\"date\":\"2025-11-20\"}"}}]}}],
		"usage": {"prompt_tokens": 50, "completion_tokens": 12, "total_tokens": 62}
	}`, &captured)

	resp, err := newTestChatModel(server.URL).Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Any slots on 2025-11-20?"},
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "call_0", Name: "get_user_active_services", Arguments: "{}"}}},
			{Role: llm.RoleTool, ToolCallID: "call_0", Content: "No active services"},
		},
		Tools: []llm.ToolSpec{{
			Name:        "check_appointment_slots",
			Description: "Check free slots",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"date": map[string]any{"type": "string"}},
				"required":   []string{"date"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if !resp.WantsTools() {
		t.Fatal("expected tool calls")
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "check_appointment_slots" || tc.Arguments != `{"date":"2025-11-20"}` {
		t.Errorf("tool call = %+v", tc)
	}

	if len(captured.Tools) != 1 || captured.Tools[0].Type != "function" {
		t.Fatalf("tools = %+v", captured.Tools)
	}
	if captured.Tools[0].Function.Parameters["type"] != "object" {
		t.Errorf("parameters = %v", captured.Tools[0].Function.Parameters)
	}
	if captured.Messages[1].ToolCalls[0].Function.Name != "get_user_active_services" {
		t.Errorf("assistant tool call not forwarded: %+v", captured.Messages[1])
	}
	if captured.Messages[2].Role != "tool" || captured.Messages[2].ToolCallID != "call_0" {
		t.Errorf("tool result message = %+v", captured.Messages[2])
	}
}

func TestChatModel_APIErrorWrapsModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestChatModel(server.URL).Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestChatModel_NoChoices(t *testing.T) {
	server := chatServer(t, `{"id":"c3","choices":[]}`, nil)

	_, err := newTestChatModel(server.URL).Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestChatModel_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	m := NewChatModel(&ChatConfig{
		APIKey:  "k",
		BaseURL: server.URL,
		Model:   "test-chat",
		Timeout: 50 * time.Millisecond,
	})
	_, err := m.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestChatModel_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	m := newTestChatModel(server.URL)
	if err := m.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "test-chat" {
		t.Errorf("Name = %q", m.Name())
	}
}

func TestChatModel_HealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if err := newTestChatModel(server.URL).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
