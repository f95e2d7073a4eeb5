package llm

import (
	"fmt"
	"strings"
)

// maxPromptComments caps how many comments are inlined into the prompt.
const maxPromptComments = 200

// BuildClassifyPrompt renders the classification prompt for a batch of
// comments. The provider must answer with a single JSON object.
func BuildClassifyPrompt(comments []string) string {
	if len(comments) > maxPromptComments {
		comments = comments[:maxPromptComments]
	}

	var b strings.Builder
	b.WriteString(`Classify the following YouTube comments into five categories: positive, negative, neutral, irrelevant, and scam. Pick up to three comments that are the most helpful to a viewer deciding whether to watch, and provide a brief summary of the overall sentiment.

Comments:
`)
	for _, comment := range comments {
		b.WriteString(sanitizeComment(comment))
		b.WriteString("\n")
	}
	b.WriteString(`
Respond with only a JSON object in this exact shape:
{
  "positive": [ ... ],
  "negative": [ ... ],
  "neutral": [ ... ],
  "irrelevant": [ ... ],
  "scam": [ ... ],
  "most_helpful": [ ... ],
  "summary": "..."
}`)
	return b.String()
}

// BuildFixPrompt asks the provider to repair a previous malformed response.
func BuildFixPrompt(raw string) string {
	return fmt.Sprintf(`The following was supposed to be a single valid JSON object with keys positive, negative, neutral, irrelevant, scam, most_helpful and summary, but it is malformed. Return only the corrected JSON object, with no markdown fences and no commentary.

%s`, raw)
}

func sanitizeComment(comment string) string {
	comment = strings.ReplaceAll(comment, "\r", " ")
	comment = strings.ReplaceAll(comment, "\n", " ")
	return strings.TrimSpace(comment)
}

// StripFences removes markdown code fences the provider sometimes wraps
// around its JSON output.
func StripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
