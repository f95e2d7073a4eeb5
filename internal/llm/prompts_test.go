package llm

import (
	"strings"
	"testing"
)

func TestBuildClassifyPromptCapsComments(t *testing.T) {
	comments := make([]string, maxPromptComments+50)
	for i := range comments {
		comments[i] = "comment"
	}
	prompt := BuildClassifyPrompt(comments)
	if got := strings.Count(prompt, "comment\n"); got != maxPromptComments {
		t.Fatalf("expected %d comments in prompt, got %d", maxPromptComments, got)
	}
}

func TestBuildClassifyPromptFlattensNewlines(t *testing.T) {
	prompt := BuildClassifyPrompt([]string{"line one\nline two"})
	if strings.Contains(prompt, "line one\nline two") {
		t.Fatalf("multi-line comment leaked into prompt unflattened")
	}
	if !strings.Contains(prompt, "line one line two") {
		t.Fatalf("expected flattened comment in prompt")
	}
}

func TestStripFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"x\"}\n```"
	if got := StripFences(raw); got != `{"summary":"x"}` {
		t.Fatalf("unexpected strip result: %q", got)
	}
	if got := StripFences(`{"summary":"x"}`); got != `{"summary":"x"}` {
		t.Fatalf("plain JSON must pass through, got %q", got)
	}
}

func TestClassifiedCountsSentimentBucketsOnly(t *testing.T) {
	c := Classification{
		Positive:   []string{"a", "b"},
		Neutral:    []string{"c"},
		Negative:   []string{"d"},
		Irrelevant: []string{"e", "f"},
		Scam:       []string{"g"},
	}
	if got := c.Classified(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}
