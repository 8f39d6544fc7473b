package agent

import (
	"fmt"
	"strings"

	"github.com/smartshopper/agent/internal/llm"
)

// Document is a retrieved context document injected into the prompt.
type Document struct {
	ID   string // product identifier, may be empty
	Text string
}

// BuildSystemPrompt constructs the system prompt for native tool-use mode.
func BuildSystemPrompt(tools []llm.ToolDefinition) string {
	var b strings.Builder

	b.WriteString("You are a factual shopping assistant for an e-commerce store.\n\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("- Answer questions about products, prices, and materials.\n")
	b.WriteString("- If the user asks for price, inventory or material, call a tool instead of guessing.\n")

	if len(tools) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		}
	}

	return b.String()
}

// BuildRAGPrompt assembles the text-protocol prompt: instruction header,
// enumerated retrieved documents, and the user query. Pure function —
// identical inputs produce identical output.
func BuildRAGPrompt(query string, docs []Document, toolNames []string) string {
	var b strings.Builder

	b.WriteString("You are a factual shopping assistant. Use ONLY the provided DOCUMENTS to answer factual questions.\n")
	if len(toolNames) > 0 {
		fmt.Fprintf(&b, "If you need to call a tool (%s), return a single JSON object matching the schema:\n", strings.Join(toolNames, " / "))
		b.WriteString(`{"action": <tool_name>, "params": { ... }}` + "\n")
		b.WriteString("Return ONLY valid JSON when requesting a tool call. Do not add additional text.\n")
	}

	b.WriteString("\n--- DOCUMENTS ---\n")
	for i, d := range docs {
		if d.ID != "" {
			fmt.Fprintf(&b, "[%d] (%s) %s\n", i, d.ID, d.Text)
		} else {
			fmt.Fprintf(&b, "[%d] %s\n", i, d.Text)
		}
	}

	b.WriteString("\nUser: " + query + "\nAssistant:")
	return b.String()
}
