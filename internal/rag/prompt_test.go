package rag

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("no context forbids fabrication", func(t *testing.T) {
		prompt := BuildPrompt("You are a shoe store assistant.", Result{})

		if !strings.HasPrefix(prompt, "You are a shoe store assistant.") {
			t.Errorf("persona missing:\n%s", prompt)
		}
		if !strings.Contains(prompt, "Never invent") {
			t.Errorf("anti-fabrication rules missing:\n%s", prompt)
		}
		if strings.Contains(prompt, "KNOWLEDGE BASE CONTENT") {
			t.Error("content block must not appear without context")
		}
	})

	t.Run("context wrapped in content block", func(t *testing.T) {
		result := Result{
			HasContext: true,
			Context:    "[Source 1: catalog.csv - products]\nSKU 8698686924363 | 49.90",
		}
		prompt := BuildPrompt("You are a shoe store assistant.", result)

		if !strings.Contains(prompt, "=== KNOWLEDGE BASE CONTENT ===") {
			t.Errorf("content block missing:\n%s", prompt)
		}
		if !strings.Contains(prompt, "=== END KNOWLEDGE BASE CONTENT ===") {
			t.Errorf("content block not closed:\n%s", prompt)
		}
		if !strings.Contains(prompt, "49.90") {
			t.Errorf("context lost:\n%s", prompt)
		}
		if !strings.Contains(prompt, "Quote prices exactly") {
			t.Errorf("usage rules missing:\n%s", prompt)
		}
	})

	t.Run("empty system prompt falls back to default", func(t *testing.T) {
		prompt := BuildPrompt("  ", Result{})
		if !strings.HasPrefix(prompt, "You are a helpful assistant.") {
			t.Errorf("default persona missing:\n%s", prompt)
		}
	})
}
