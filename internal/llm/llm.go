package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for comment classification.
type Client interface {
	Classify(ctx context.Context, input ClassifyInput) (Classification, error)
}

// ClassifyInput captures the inputs needed for sentiment classification.
type ClassifyInput struct {
	VideoID  string
	Comments []string
}

// Classification is the parsed provider output: each bucket holds the
// comments assigned to it.
type Classification struct {
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
	Neutral     []string `json:"neutral"`
	Irrelevant  []string `json:"irrelevant"`
	Scam        []string `json:"scam"`
	MostHelpful []string `json:"most_helpful"`
	Summary     string   `json:"summary"`
}

// Classified counts the comments in the three sentiment buckets. Irrelevant
// and scam comments do not carry sentiment weight.
func (c Classification) Classified() int {
	return len(c.Positive) + len(c.Neutral) + len(c.Negative)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Classify returns ErrNotImplemented.
func (PlaceholderClient) Classify(ctx context.Context, input ClassifyInput) (Classification, error) {
	_ = ctx
	_ = input
	return Classification{}, ErrNotImplemented
}
