package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CumulativeQuizRow is the persisted shape of a cumulative quiz. The
// included video ids are stored order-preserving and compared verbatim by
// the consistency guard, so this shape is part of the storage contract.
type CumulativeQuizRow struct {
	ID               uuid.UUID
	VideoID          int64
	SeriesID         int64
	Language         string
	Model            string
	Questions        json.RawMessage
	IncludedVideoIDs []int64
	VideoCount       int
	ProcessingMS     int64
	GeneratedAt      time.Time
}

// CumulativeQuizKey identifies one cumulative quiz record.
type CumulativeQuizKey struct {
	VideoID  int64
	Language string
}

// CumulativeRepository persists cumulative quizzes, one per anchor video
// and language.
type CumulativeRepository struct {
	db DB
}

func NewCumulativeRepository(db DB) *CumulativeRepository {
	return &CumulativeRepository{db: db}
}

const cumulativeColumns = `id, video_id, series_id, language, model, questions, included_video_ids, video_count, processing_ms, generated_at`

// Get loads the stored cumulative quiz for a (video, language) pair.
func (r *CumulativeRepository) Get(ctx context.Context, videoID int64, language string) (CumulativeQuizRow, bool, error) {
	q := `SELECT ` + cumulativeColumns + `
		FROM cumulative_quizzes
		WHERE video_id = $1 AND language = $2`

	var row CumulativeQuizRow
	err := r.db.QueryRow(ctx, q, videoID, language).Scan(
		&row.ID, &row.VideoID, &row.SeriesID, &row.Language, &row.Model,
		&row.Questions, &row.IncludedVideoIDs, &row.VideoCount, &row.ProcessingMS, &row.GeneratedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CumulativeQuizRow{}, false, nil
	}
	if err != nil {
		return CumulativeQuizRow{}, false, fmt.Errorf("get cumulative quiz for video %d lang %s: %w", videoID, language, err)
	}
	return row, true, nil
}

// Upsert fully replaces the record keyed by (video_id, language). The write
// is atomic and last-write-wins; concurrent regenerations converge on the
// same logical content.
func (r *CumulativeRepository) Upsert(ctx context.Context, row CumulativeQuizRow) error {
	const q = `
		INSERT INTO cumulative_quizzes
			(id, video_id, series_id, language, model, questions, included_video_ids, video_count, processing_ms, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (video_id, language) DO UPDATE SET
			series_id = EXCLUDED.series_id,
			model = EXCLUDED.model,
			questions = EXCLUDED.questions,
			included_video_ids = EXCLUDED.included_video_ids,
			video_count = EXCLUDED.video_count,
			processing_ms = EXCLUDED.processing_ms,
			generated_at = EXCLUDED.generated_at`

	_, err := r.db.Exec(ctx, q,
		row.ID, row.VideoID, row.SeriesID, row.Language, row.Model,
		row.Questions, row.IncludedVideoIDs, row.VideoCount, row.ProcessingMS, row.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cumulative quiz for video %d lang %s: %w", row.VideoID, row.Language, err)
	}
	return nil
}

// Delete removes one cumulative quiz. Missing rows are not an error.
func (r *CumulativeRepository) Delete(ctx context.Context, videoID int64, language string) error {
	const q = `DELETE FROM cumulative_quizzes WHERE video_id = $1 AND language = $2`
	if _, err := r.db.Exec(ctx, q, videoID, language); err != nil {
		return fmt.Errorf("delete cumulative quiz for video %d lang %s: %w", videoID, language, err)
	}
	return nil
}

// DeleteBySeries bulk-deletes every cumulative quiz anchored in a series and
// returns the deleted keys so callers can invalidate the matching cache
// entries.
func (r *CumulativeRepository) DeleteBySeries(ctx context.Context, seriesID int64) ([]CumulativeQuizKey, error) {
	const q = `
		DELETE FROM cumulative_quizzes
		WHERE series_id = $1
		RETURNING video_id, language`

	rows, err := r.db.Query(ctx, q, seriesID)
	if err != nil {
		return nil, fmt.Errorf("bulk delete cumulative quizzes for series %d: %w", seriesID, err)
	}
	defer rows.Close()

	var keys []CumulativeQuizKey
	for rows.Next() {
		var k CumulativeQuizKey
		if err := rows.Scan(&k.VideoID, &k.Language); err != nil {
			return nil, fmt.Errorf("scan deleted quiz key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
