package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"sentiment-scoop/internal/llm"
)

// Client implements llm.Client using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Classify sends the classification prompt and parses the JSON buckets. The
// provider tends to wrap JSON in prose, so the object is cut out of the text
// before parsing.
func (c *Client) Classify(ctx context.Context, input llm.ClassifyInput) (llm.Classification, error) {
	prompt := llm.BuildClassifyPrompt(input.Comments)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return llm.Classification{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return llm.Classification{}, fmt.Errorf("gemini response empty content")
	}

	jsonStr, err := extractJSON(llm.StripFences(text))
	if err != nil {
		return llm.Classification{}, err
	}
	var parsed llm.Classification
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return llm.Classification{}, fmt.Errorf("invalid JSON from Gemini: %w", err)
	}
	return parsed, nil
}

func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return text[start : end+1], nil
}

var _ llm.Client = (*Client)(nil)
