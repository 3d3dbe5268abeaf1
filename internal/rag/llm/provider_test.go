package llm

import (
	"strings"
	"testing"
)

func TestBuildRephrasePrompt(t *testing.T) {
	prompt := BuildRephrasePrompt("invoice total")
	if !strings.HasPrefix(prompt, `Generate a question that asks for "invoice total".`) {
		t.Errorf("unexpected prompt: %s", prompt)
	}
	if !strings.Contains(prompt, `"Who created this ticket?"`) {
		t.Errorf("prompt lost its example: %s", prompt)
	}
}

func TestCleanOutput(t *testing.T) {
	if got := CleanOutput("  What is the invoice total?\n"); got != "What is the invoice total?" {
		t.Errorf("got %q", got)
	}
	if got := CleanOutput(" \n\t"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
