package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SummaryRow is a stored per-video summary.
type SummaryRow struct {
	VideoID   int64
	Language  string
	Model     string
	Summary   string
	UpdatedAt time.Time
}

// SummaryRepository stores AI-produced video summaries.
type SummaryRepository struct {
	db DB
}

func NewSummaryRepository(db DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Get loads the summary for a (video, language) pair.
func (r *SummaryRepository) Get(ctx context.Context, videoID int64, language string) (SummaryRow, error) {
	const q = `
		SELECT video_id, language, model, summary, updated_at
		FROM video_summaries
		WHERE video_id = $1 AND language = $2`

	var row SummaryRow
	err := r.db.QueryRow(ctx, q, videoID, language).Scan(&row.VideoID, &row.Language, &row.Model, &row.Summary, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SummaryRow{}, fmt.Errorf("summary for video %d lang %s: %w", videoID, language, ErrNotFound)
	}
	if err != nil {
		return SummaryRow{}, fmt.Errorf("get summary for video %d lang %s: %w", videoID, language, err)
	}
	return row, nil
}

// Upsert replaces the stored summary for a (video, language) pair.
func (r *SummaryRepository) Upsert(ctx context.Context, row SummaryRow) error {
	const q = `
		INSERT INTO video_summaries (video_id, language, model, summary)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id, language)
		DO UPDATE SET model = EXCLUDED.model, summary = EXCLUDED.summary, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, row.VideoID, row.Language, row.Model, row.Summary); err != nil {
		return fmt.Errorf("upsert summary for video %d lang %s: %w", row.VideoID, row.Language, err)
	}
	return nil
}
