package sentiment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
  video_id TEXT PRIMARY KEY,
  summary TEXT NOT NULL,
  verdict INTEGER NOT NULL,
  real_total_comments INTEGER NOT NULL,
  most_helpful TEXT NOT NULL,
  comments_data TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at);
`

// SQLiteRepo is the dev-mode datastore when no Postgres is configured.
type SQLiteRepo struct {
	DB *sql.DB
}

// NewSQLiteRepo creates the schema if needed.
func NewSQLiteRepo(ctx context.Context, db *sql.DB) (*SQLiteRepo, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteRepo{DB: db}, nil
}

func (r *SQLiteRepo) Upsert(ctx context.Context, analysis Analysis) error {
	helpful, err := json.Marshal(analysis.MostHelpful)
	if err != nil {
		return err
	}
	data, err := json.Marshal(analysis.CommentsData)
	if err != nil {
		return err
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO analyses (video_id, summary, verdict, real_total_comments, most_helpful, comments_data, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (video_id) DO UPDATE SET
  summary = excluded.summary,
  verdict = excluded.verdict,
  real_total_comments = excluded.real_total_comments,
  most_helpful = excluded.most_helpful,
  comments_data = excluded.comments_data,
  created_at = excluded.created_at`
	_, err = r.DB.ExecContext(ctx, query,
		analysis.VideoID,
		analysis.Summary,
		analysis.Verdict,
		analysis.RealTotalComments,
		string(helpful),
		string(data),
		analysis.CreatedAt,
	)
	return err
}

func (r *SQLiteRepo) GetByVideoID(ctx context.Context, videoID string) (Analysis, error) {
	const query = `
SELECT video_id, summary, verdict, real_total_comments, most_helpful, comments_data, created_at
FROM analyses
WHERE video_id = ?
LIMIT 1`
	var analysis Analysis
	var helpful, data string
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
	if err := json.Unmarshal([]byte(helpful), &analysis.MostHelpful); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal([]byte(data), &analysis.CommentsData); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

func (r *SQLiteRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
