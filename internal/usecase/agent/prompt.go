package agent

import (
	"strings"

	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/profile"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
)

// Fixed replies and context fillers.
const (
	DeclineReply = "I'm sorry, but I can only answer questions related to vehicle services and appointments. " +
		"How can I help you with your car today?"
	ExhaustedReply = "I'm sorry, I wasn't able to finish working on that request. " +
		"Please try asking again in a different way."
	KnowledgeUnavailable = "Knowledge base temporarily unavailable."
	KnowledgeEmpty       = "No relevant information found in the knowledge base."
)

const persona = `You are 'TechTorque AI Assistant', a friendly and professional vehicle service assistant for TechTorque Auto Services.
Help customers with vehicle services, repairs, maintenance and appointments in a warm, helpful manner.

CAPABILITIES:
- Answer questions about vehicle services, repairs, maintenance and appointments
- Check appointment availability, service status and work logs using the provided tools
- Explain company policies, hours and pricing from the knowledge base
- Give practical automotive advice

STYLE:
- Be friendly, patient and professional; use clear, simple language
- Keep answers short unless the customer asks for detail

SCOPE:
- Stay on automotive and service topics. For unrelated topics, politely redirect:
  "I specialize in vehicle services. How can I help you with your car today?"
- Use tools for live data (appointments, service status, work logs) and the knowledge base for general information
- Never invent appointment times, prices or service states`

// systemPrompt renders persona, caller profile and knowledge context.
func systemPrompt(p profile.Profile, knowledge retrieval.Result) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nCurrent User Context: ")
	b.WriteString(p.Summary())
	b.WriteString("\n\nKnowledge Base:\n")
	b.WriteString(knowledgeText(knowledge))
	return b.String()
}

func knowledgeText(r retrieval.Result) string {
	switch {
	case !r.Available:
		return KnowledgeUnavailable
	case r.Context == "":
		return KnowledgeEmpty
	default:
		return r.Context
	}
}

// buildMessages assembles system prompt, history and the new question.
func buildMessages(system string, history []domconv.Message, query string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == domconv.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: query})
}
