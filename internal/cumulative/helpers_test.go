package cumulative

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/series"
	"github.com/skillstream/study-platform/internal/video"
)

// stubVideos backs both VideoStore and series.VideoLister with an in-memory
// series snapshot.
type stubVideos struct {
	mu     sync.Mutex
	videos map[int64]video.Video
}

func newStubVideos(vs ...video.Video) *stubVideos {
	s := &stubVideos{videos: map[int64]video.Video{}}
	for _, v := range vs {
		s.videos[v.ID] = v
	}
	return s
}

func (s *stubVideos) add(v video.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[v.ID] = v
}

func (s *stubVideos) GetVideo(_ context.Context, id int64) (video.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return video.Video{}, fmt.Errorf("video %d: %w", id, repository.ErrNotFound)
	}
	return v, nil
}

func (s *stubVideos) ListSeriesVideos(_ context.Context, seriesID int64) ([]video.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []video.Video
	for _, v := range s.videos {
		if v.SeriesID != nil && *v.SeriesID == seriesID {
			out = append(out, v)
		}
	}
	// Stable enumeration order, like the repository's ORDER BY id.
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID < out[i].ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// stubQuizzes is an in-memory individual quiz store.
type stubQuizzes struct {
	mu      sync.Mutex
	entries map[string]json.RawMessage
	err     error
}

func newStubQuizzes() *stubQuizzes {
	return &stubQuizzes{entries: map[string]json.RawMessage{}}
}

func quizKey(videoID int64, language string) string {
	return fmt.Sprintf("%d:%s", videoID, language)
}

func (s *stubQuizzes) put(videoID int64, language string, questions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[quizKey(videoID, language)] = json.RawMessage(questions)
}

func (s *stubQuizzes) GetQuestions(_ context.Context, videoID int64, language string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, false, s.err
	}
	raw, ok := s.entries[quizKey(videoID, language)]
	return raw, ok, nil
}

func (s *stubQuizzes) HasQuizzes(_ context.Context, videoIDs []int64, language string) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	existing := make(map[int64]bool, len(videoIDs))
	for _, id := range videoIDs {
		if _, ok := s.entries[quizKey(id, language)]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

// memRecords is an in-memory durable store for cumulative quiz rows.
type memRecords struct {
	mu   sync.Mutex
	rows map[string]repository.CumulativeQuizRow
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]repository.CumulativeQuizRow{}}
}

func (m *memRecords) Get(_ context.Context, videoID int64, language string) (repository.CumulativeQuizRow, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[quizKey(videoID, language)]
	return row, ok, nil
}

func (m *memRecords) Upsert(_ context.Context, row repository.CumulativeQuizRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[quizKey(row.VideoID, row.Language)] = row
	return nil
}

func (m *memRecords) Delete(_ context.Context, videoID int64, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, quizKey(videoID, language))
	return nil
}

func (m *memRecords) DeleteBySeries(_ context.Context, seriesID int64) ([]repository.CumulativeQuizKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []repository.CumulativeQuizKey
	for k, row := range m.rows {
		if row.SeriesID == seriesID {
			keys = append(keys, repository.CumulativeQuizKey{VideoID: row.VideoID, Language: row.Language})
			delete(m.rows, k)
		}
	}
	return keys, nil
}

// memQuizCache is an in-memory fast cache.
type memQuizCache struct {
	mu      sync.Mutex
	entries map[string]*Quiz
}

func newMemQuizCache() *memQuizCache {
	return &memQuizCache{entries: map[string]*Quiz{}}
}

func (c *memQuizCache) Get(_ context.Context, videoID int64, language string) (*Quiz, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[quizKey(videoID, language)], nil
}

func (c *memQuizCache) Set(_ context.Context, quiz *Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[quizKey(quiz.VideoID, quiz.Language)] = quiz
	return nil
}

func (c *memQuizCache) Invalidate(_ context.Context, videoID int64, language string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, quizKey(videoID, language))
	return nil
}

func seriesVideo(id, seriesID, hint int64, created time.Time) video.Video {
	sid := seriesID
	return video.Video{
		ID:        id,
		SeriesID:  &sid,
		Title:     fmt.Sprintf("Video %d", id),
		State:     video.StateReady,
		Metadata:  map[string]any{"order": float64(hint)},
		CreatedAt: created,
	}
}

func newTestResolver(videos *stubVideos) *series.Resolver {
	return series.NewResolver(videos)
}
