// Package analysisclient talks to the sentiment backend's /analyze endpoint.
// It is pure request/response: no state beyond the injected token source, and
// every failure mode is converted to a Result value at this boundary.
package analysisclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentiment-scoop/internal/shared/telemetry"
)

// NeutralPlaceholder is substituted when the backend omits chart data so the
// chart always renders: [total, positive, neutral, negative].
var NeutralPlaceholder = []int{100, 100, 0, 0}

// Result is the normalized analysis outcome. It is ephemeral: held only for
// the render cycle it was fetched for.
type Result struct {
	Summary             string
	Verdict             int
	TotalComments       string
	MostHelpfulComments []string
	CommentsData        []int
	CreatedAt           string
	Unauthenticated     bool
	Failed              bool
}

// TokenSource yields the current credential token; "" means unauthenticated.
type TokenSource interface {
	Get() string
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type analyzeRequest struct {
	VideoID   string `json:"videoId"`
	AutoRetry bool   `json:"autoRetry,omitempty"`
}

type analyzeResponse struct {
	Summary             string          `json:"summary"`
	Verdict             *int            `json:"verdict"`
	RealTotalComments   json.RawMessage `json:"real_total_comments"`
	MostHelpfulComments []string        `json:"most_helpful_comments"`
	CommentsData        []int           `json:"comments_data"`
	CreatedAt           string          `json:"created_at"`
}

// Analyze issues one network call for the given video. Without a token it
// returns the unauthenticated sentinel and never touches the network, since
// the backend would reject the request anyway and the call costs money.
// forceRefresh is forwarded as the autoRetry flag so the backend can tell a
// cache-busting request from a normal one.
func (c *Client) Analyze(ctx context.Context, videoID string, forceRefresh bool) Result {
	token := c.tokens.Get()
	if token == "" {
		return Result{
			Summary:         "Please log in to view analysis",
			TotalComments:   "No comments available",
			CommentsData:    NeutralPlaceholder,
			Unauthenticated: true,
		}
	}

	payload, err := json.Marshal(analyzeRequest{VideoID: videoID, AutoRetry: forceRefresh})
	if err != nil {
		return c.failure(videoID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return c.failure(videoID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(videoID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(videoID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return c.failure(videoID, fmt.Errorf("analysis request returned status %d", resp.StatusCode))
	}

	var decoded analyzeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return c.failure(videoID, err)
	}
	return normalize(decoded)
}

func (c *Client) failure(videoID string, err error) Result {
	telemetry.Error("analysis.fetch failed", map[string]any{
		"video_id": videoID,
		"error":    err.Error(),
	})
	return Result{
		Summary:       "Error fetching analysis",
		TotalComments: "Error fetching comments",
		CommentsData:  NeutralPlaceholder,
		Failed:        true,
	}
}

// normalize maps backend field naming onto Result and fills defensive
// defaults so the renderer never sees an absent field.
func normalize(resp analyzeResponse) Result {
	out := Result{
		Summary:             resp.Summary,
		MostHelpfulComments: resp.MostHelpfulComments,
		CommentsData:        resp.CommentsData,
		CreatedAt:           resp.CreatedAt,
	}
	if out.Summary == "" {
		out.Summary = "No analysis available"
	}
	if resp.Verdict != nil {
		out.Verdict = *resp.Verdict
	}
	out.TotalComments = totalCommentsString(resp.RealTotalComments)
	if len(out.CommentsData) == 0 {
		out.CommentsData = NeutralPlaceholder
	}
	if out.MostHelpfulComments == nil {
		out.MostHelpfulComments = []string{}
	}
	return out
}

// totalCommentsString accepts the wire field as either a JSON string or a
// number.
func totalCommentsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "No comments available"
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return "No comments available"
}
