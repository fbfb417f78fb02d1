package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// QuizRepository stores the individually generated per-video quizzes. This
// side of the store is written by the quiz generation flow and read by the
// aggregation core.
type QuizRepository struct {
	db DB
}

func NewQuizRepository(db DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// GetQuestions returns the stored question list for a (video, language)
// pair, or found=false when no quiz exists.
func (r *QuizRepository) GetQuestions(ctx context.Context, videoID int64, language string) (json.RawMessage, bool, error) {
	const q = `
		SELECT questions
		FROM video_quizzes
		WHERE video_id = $1 AND language = $2`

	var raw json.RawMessage
	err := r.db.QueryRow(ctx, q, videoID, language).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get quiz for video %d lang %s: %w", videoID, language, err)
	}
	return raw, true, nil
}

// HasQuizzes reports quiz existence for a batch of video ids in one query.
func (r *QuizRepository) HasQuizzes(ctx context.Context, videoIDs []int64, language string) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(videoIDs))
	if len(videoIDs) == 0 {
		return existing, nil
	}

	const q = `
		SELECT video_id
		FROM video_quizzes
		WHERE video_id = ANY($1) AND language = $2`

	rows, err := r.db.Query(ctx, q, videoIDs, language)
	if err != nil {
		return nil, fmt.Errorf("check quizzes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan quiz existence row: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// Upsert replaces the stored quiz for a (video, language) pair.
func (r *QuizRepository) Upsert(ctx context.Context, videoID int64, language, model string, questions json.RawMessage) error {
	const q = `
		INSERT INTO video_quizzes (video_id, language, model, questions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id, language)
		DO UPDATE SET model = EXCLUDED.model, questions = EXCLUDED.questions, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, videoID, language, model, questions); err != nil {
		return fmt.Errorf("upsert quiz for video %d lang %s: %w", videoID, language, err)
	}
	return nil
}
