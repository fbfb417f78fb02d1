package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillstream/study-platform/internal/video"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB is the subset of pgxpool.Pool the repositories use. Narrow so tests
// can stub it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// VideoRepository reads videos and series membership from Postgres.
type VideoRepository struct {
	db DB
}

func NewVideoRepository(db DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetVideo loads one video by id.
func (r *VideoRepository) GetVideo(ctx context.Context, id int64) (video.Video, error) {
	const q = `
		SELECT id, series_id, title, state, metadata, created_at
		FROM videos
		WHERE id = $1`

	var v video.Video
	err := r.db.QueryRow(ctx, q, id).Scan(&v.ID, &v.SeriesID, &v.Title, &v.State, &v.Metadata, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return video.Video{}, fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return video.Video{}, fmt.Errorf("get video %d: %w", id, err)
	}
	return v, nil
}

// ListSeriesVideos returns every video owned by a series, ordered by primary
// key. The position resolver applies the real ordering on top; the key order
// here only guarantees a stable enumeration for tie-breaking.
func (r *VideoRepository) ListSeriesVideos(ctx context.Context, seriesID int64) ([]video.Video, error) {
	const q = `
		SELECT id, series_id, title, state, metadata, created_at
		FROM videos
		WHERE series_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list series %d videos: %w", seriesID, err)
	}
	defer rows.Close()

	var out []video.Video
	for rows.Next() {
		var v video.Video
		if err := rows.Scan(&v.ID, &v.SeriesID, &v.Title, &v.State, &v.Metadata, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetSeries loads series metadata.
func (r *VideoRepository) GetSeries(ctx context.Context, id int64) (video.Series, error) {
	const q = `SELECT id, title, created_at FROM series WHERE id = $1`

	var s video.Series
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.Title, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return video.Series{}, fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return video.Series{}, fmt.Errorf("get series %d: %w", id, err)
	}
	return s, nil
}
