package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider turns a terse user query into a well formed question.
type Provider interface {
	Rephrase(ctx context.Context, text string) (string, error)
}

// BuildRephrasePrompt wraps the user query in the few-shot instruction sent
// to every provider.
func BuildRephrasePrompt(userQuery string) string {
	return fmt.Sprintf(`Generate a question that asks for "%s". For example, the question for "ticket creation time" is "When is the ticket created?" and the question for "ticket creator" is "Who created this ticket?"`, userQuery)
}

// CleanOutput trims the model reply; an empty result means no usable output.
func CleanOutput(reply string) string {
	return strings.TrimSpace(reply)
}
