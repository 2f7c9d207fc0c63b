// Package llm describes the chat-completion contract the agent drives.
package llm

// Role is the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the model's working context.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall // set on assistant messages that request tools
	ToolCallID string     // set on tool result messages
	Name       string
}

// ToolCall is a model request to run a registered tool. Arguments is raw JSON.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec advertises a tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema object
}

// Request is a single model invocation.
type Request struct {
	Messages []Message
	Tools    []ToolSpec
}

// Response is the model's answer: either final content or tool calls.
type Response struct {
	Content          string
	ToolCalls        []ToolCall
	PromptTokens     int
	CompletionTokens int
}

// WantsTools reports whether the model asked for tool execution.
func (r Response) WantsTools() bool { return len(r.ToolCalls) > 0 }
