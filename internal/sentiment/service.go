package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentiment-scoop/internal/llm"
	"sentiment-scoop/internal/shared/metrics"
	"sentiment-scoop/internal/shared/telemetry"
)

// CommentSource yields a video's comments and its real comment count.
type CommentSource interface {
	FetchComments(ctx context.Context, videoID string) ([]string, error)
	CommentCount(ctx context.Context, videoID string) (int64, error)
}

// Service runs analyses and serves cached results.
type Service struct {
	Repo     Repo
	Cache    *Cache
	Comments CommentSource
	LLM      llm.Client
	// MaxAge is how long a stored analysis is served without re-analyzing.
	MaxAge time.Duration

	now func() time.Time
}

// ErrAnalysisFailed covers comment fetching and classification failures; the
// handler maps it to the contract's 500 body.
var ErrAnalysisFailed = errors.New("sentiment analysis failed")

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Analyze returns the analysis for a video. Unless force is set, a
// fresh-enough stored result is served without touching YouTube or the LLM.
// The bool reports whether the result came from cache.
func (s *Service) Analyze(ctx context.Context, videoID string, force bool) (Analysis, bool, error) {
	if strings.TrimSpace(videoID) == "" {
		return Analysis{}, false, errors.New("video id is required")
	}

	if !force {
		if cached, ok := s.lookupFresh(ctx, videoID); ok {
			metrics.IncCacheHit()
			return cached, true, nil
		}
	}
	metrics.IncCacheMiss()

	metrics.IncAnalysisStarted()
	started := metrics.NowMillis()
	analysis, err := s.runAnalysis(ctx, videoID)
	metrics.ObserveAnalysisDurationMs(metrics.NowMillis() - started)
	if err != nil {
		metrics.IncAnalysisFailed()
		return Analysis{}, false, err
	}
	metrics.IncAnalysisCompleted()

	if err := s.Repo.Upsert(ctx, analysis); err != nil {
		// Serving the result matters more than persisting it.
		telemetry.Error("sentiment.persist_failed", map[string]any{
			"video_id": videoID,
			"error":    err.Error(),
		})
	}
	s.Cache.Set(ctx, analysis)

	return analysis, false, nil
}

// Lookup returns the stored analysis without triggering a new one.
func (s *Service) Lookup(ctx context.Context, videoID string) (Analysis, error) {
	if cached, ok := s.Cache.Get(ctx, videoID); ok {
		return cached, nil
	}
	return s.Repo.GetByVideoID(ctx, videoID)
}

// PruneExpired deletes stored analyses older than MaxAge. Wired to the cron
// janitor.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	s.Cache.PruneExpired()
	if s.MaxAge <= 0 {
		return 0, nil
	}
	return s.Repo.DeleteOlderThan(ctx, s.clock().Add(-s.MaxAge))
}

func (s *Service) lookupFresh(ctx context.Context, videoID string) (Analysis, bool) {
	if cached, ok := s.Cache.Get(ctx, videoID); ok {
		return cached, true
	}
	stored, err := s.Repo.GetByVideoID(ctx, videoID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Error("sentiment.lookup_failed", map[string]any{
				"video_id": videoID,
				"error":    err.Error(),
			})
		}
		return Analysis{}, false
	}
	if s.MaxAge > 0 && s.clock().Sub(stored.CreatedAt) > s.MaxAge {
		return Analysis{}, false
	}
	s.Cache.Set(ctx, stored)
	return stored, true
}

func (s *Service) runAnalysis(ctx context.Context, videoID string) (Analysis, error) {
	comments, err := s.Comments.FetchComments(ctx, videoID)
	if err != nil {
		telemetry.Error("sentiment.fetch_comments_failed", map[string]any{
			"video_id": videoID,
			"error":    err.Error(),
		})
		return Analysis{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if len(comments) == 0 {
		return Analysis{
			VideoID:      videoID,
			Summary:      "No comments to analyze",
			Verdict:      0,
			MostHelpful:  []string{},
			CommentsData: []int{0, 0, 0, 0},
			CreatedAt:    s.clock(),
		}, nil
	}

	classification, err := s.LLM.Classify(ctx, llm.ClassifyInput{VideoID: videoID, Comments: comments})
	if err != nil {
		telemetry.Error("sentiment.classify_failed", map[string]any{
			"video_id": videoID,
			"error":    err.Error(),
		})
		return Analysis{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	realTotal, err := s.Comments.CommentCount(ctx, videoID)
	if err != nil {
		// The fetched count is a usable lower bound.
		telemetry.Warn("sentiment.comment_count_failed", map[string]any{
			"video_id": videoID,
			"error":    err.Error(),
		})
		realTotal = int64(len(comments))
	}

	classified := classification.Classified()
	analysis := Analysis{
		VideoID:           videoID,
		Summary:           classification.Summary,
		Verdict:           verdictFor(classification),
		RealTotalComments: realTotal,
		MostHelpful:       classification.MostHelpful,
		CommentsData: []int{
			classified,
			len(classification.Positive),
			len(classification.Neutral),
			len(classification.Negative),
		},
		CreatedAt: s.clock(),
	}
	if analysis.MostHelpful == nil {
		analysis.MostHelpful = []string{}
	}
	if analysis.Summary == "" {
		analysis.Summary = "No analysis available"
	}
	return analysis, nil
}

// verdictFor maps a classification to the five-step verdict scale. The score
// is (positive - negative) / classified over the three sentiment buckets.
func verdictFor(c llm.Classification) int {
	classified := c.Classified()
	if classified == 0 {
		return 0
	}
	score := float64(len(c.Positive)-len(c.Negative)) / float64(classified)
	switch {
	case score >= 0.6:
		return 2
	case score >= 0.2:
		return 1
	case score > -0.2:
		return 0
	case score > -0.6:
		return -1
	default:
		return -2
	}
}
