package sentiment

import (
	"context"
	"time"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "analysis not found" }

// Repo persists analyses keyed by video id.
type Repo interface {
	Upsert(ctx context.Context, analysis Analysis) error
	GetByVideoID(ctx context.Context, videoID string) (Analysis, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
