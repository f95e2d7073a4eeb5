// Package youtube fetches video comments and statistics from the YouTube
// Data API v3.
package youtube

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"sentiment-scoop/internal/shared/telemetry"
)

const pageSize = 100

// Client wraps the YouTube Data API service.
type Client struct {
	service     *youtube.Service
	maxComments int
}

// NewClient builds an API-key authenticated client. maxComments caps how many
// top-level comments FetchComments returns.
func NewClient(ctx context.Context, apiKey string, maxComments int) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return newClient(service, maxComments), nil
}

// NewClientWithTokenSource builds a client authenticated with an OAuth token
// source, for deployments that read comments on behalf of a user account.
func NewClientWithTokenSource(ctx context.Context, ts oauth2.TokenSource, maxComments int) (*Client, error) {
	service, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return newClient(service, maxComments), nil
}

func newClient(service *youtube.Service, maxComments int) *Client {
	if maxComments <= 0 {
		maxComments = 1000
	}
	return &Client{service: service, maxComments: maxComments}
}

// FetchComments pages through the video's top-level comments, newest pages
// first, up to the configured cap.
func (c *Client) FetchComments(ctx context.Context, videoID string) ([]string, error) {
	var comments []string
	pageToken := ""

	for len(comments) < c.maxComments {
		call := c.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(pageSize).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list comment threads for %s: %w", videoID, err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextOriginal)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(comments) > c.maxComments {
		comments = comments[:c.maxComments]
	}
	telemetry.Info("youtube.comments_fetched", map[string]any{
		"video_id": videoID,
		"count":    len(comments),
	})
	return comments, nil
}

// CommentCount returns the video's total comment count from its statistics,
// which includes replies the comment fetch never sees.
func (c *Client) CommentCount(ctx context.Context, videoID string) (int64, error) {
	resp, err := c.service.Videos.List([]string{"statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("video statistics for %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return 0, fmt.Errorf("video %s not found", videoID)
	}
	stats := resp.Items[0].Statistics
	if stats == nil {
		return 0, nil
	}
	return int64(stats.CommentCount), nil
}
