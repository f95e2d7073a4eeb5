package sentiment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, analysis Analysis) error {
	helpful, err := json.Marshal(analysis.MostHelpful)
	if err != nil {
		return err
	}
	data, err := json.Marshal(analysis.CommentsData)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO analyses (video_id, summary, verdict, real_total_comments, most_helpful, comments_data, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (video_id) DO UPDATE SET
  summary = EXCLUDED.summary,
  verdict = EXCLUDED.verdict,
  real_total_comments = EXCLUDED.real_total_comments,
  most_helpful = EXCLUDED.most_helpful,
  comments_data = EXCLUDED.comments_data,
  created_at = now()`
	_, err = r.DB.ExecContext(ctx, query,
		analysis.VideoID,
		analysis.Summary,
		analysis.Verdict,
		analysis.RealTotalComments,
		helpful,
		data,
	)
	return err
}

func (r *PGRepo) GetByVideoID(ctx context.Context, videoID string) (Analysis, error) {
	const query = `
SELECT video_id, summary, verdict, real_total_comments, most_helpful, comments_data, created_at
FROM analyses
WHERE video_id = $1
LIMIT 1`
	var analysis Analysis
	var helpful, data []byte
	err := r.DB.QueryRowContext(ctx, query, videoID).Scan(
		&analysis.VideoID,
		&analysis.Summary,
		&analysis.Verdict,
		&analysis.RealTotalComments,
		&helpful,
		&data,
		&analysis.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	if err := json.Unmarshal(helpful, &analysis.MostHelpful); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(data, &analysis.CommentsData); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

func (r *PGRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
