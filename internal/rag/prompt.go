package rag

import "strings"

const defaultSystemPrompt = "You are a helpful assistant."

// noContextRules forbids fabrication when retrieval found nothing.
const noContextRules = `You do not have any knowledge base content for this conversation.
If the user asks about specific products, prices, stock or codes, say that
you could not find that information. Never invent product details, prices
or identifiers.`

// contextRules governs how retrieved content may be used.
const contextRules = `Answer using ONLY the knowledge base content below.
Rules:
- When the user gives a product code or barcode, match it exactly. Report
  the product only if the code appears in the content.
- Quote prices exactly as written. Never estimate or convert them.
- If the content does not answer the question, say so instead of guessing.`

// BuildPrompt renders the final system prompt for one turn. An empty
// systemPrompt falls back to a generic assistant persona.
func BuildPrompt(systemPrompt string, result Result) string {
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	if !result.HasContext {
		b.WriteString(noContextRules)
		return b.String()
	}

	b.WriteString(contextRules)
	b.WriteString("\n\n=== KNOWLEDGE BASE CONTENT ===\n")
	b.WriteString(result.Context)
	b.WriteString("\n=== END KNOWLEDGE BASE CONTENT ===")
	return b.String()
}
