package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsertWritesAllColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		VideoID:           "abc123",
		Summary:           "mostly positive",
		Verdict:           1,
		RealTotalComments: 4321,
		MostHelpful:       []string{"great breakdown"},
		CommentsData:      []int{10, 6, 3, 1},
		CreatedAt:         time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.VideoID,
			analysis.Summary,
			analysis.Verdict,
			analysis.RealTotalComments,
			sqlmock.AnyArg(), // most_helpful json
			sqlmock.AnyArg(), // comments_data json
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), analysis); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByVideoIDDecodesJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdAt := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"video_id", "summary", "verdict", "real_total_comments", "most_helpful", "comments_data", "created_at",
	}).AddRow("abc123", "mostly positive", 1, int64(4321), []byte(`["great breakdown"]`), []byte(`[10,6,3,1]`), createdAt)

	mock.ExpectQuery("SELECT video_id, summary, verdict").
		WithArgs("abc123").
		WillReturnRows(rows)

	analysis, err := repo.GetByVideoID(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetByVideoID: %v", err)
	}
	if analysis.Summary != "mostly positive" || analysis.Verdict != 1 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if len(analysis.MostHelpful) != 1 || analysis.MostHelpful[0] != "great breakdown" {
		t.Fatalf("most_helpful not decoded: %v", analysis.MostHelpful)
	}
	if len(analysis.CommentsData) != 4 || analysis.CommentsData[1] != 6 {
		t.Fatalf("comments_data not decoded: %v", analysis.CommentsData)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByVideoIDMissTranslatesToErrNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT video_id, summary, verdict").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"video_id"}))

	if _, err := repo.GetByVideoID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteOlderThanReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	cutoff := time.Now().UTC().Add(-72 * time.Hour)

	mock.ExpectExec("DELETE FROM analyses").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
}
