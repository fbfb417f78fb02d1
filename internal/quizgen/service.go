package quizgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/video"
)

// Generator is the model-service contract (implemented by Client).
type Generator interface {
	GenerateQuiz(ctx context.Context, req QuizRequest) (json.RawMessage, string, error)
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, string, error)
}

// VideoStore looks up videos prior to generation.
type VideoStore interface {
	GetVideo(ctx context.Context, id int64) (video.Video, error)
}

// QuizWriter stores generated per-video quizzes.
type QuizWriter interface {
	Upsert(ctx context.Context, videoID int64, language, model string, questions json.RawMessage) error
}

// SummaryStore stores and reads generated summaries.
type SummaryStore interface {
	Get(ctx context.Context, videoID int64, language string) (repository.SummaryRow, error)
	Upsert(ctx context.Context, row repository.SummaryRow) error
}

// ErrVideoNotReady mirrors the aggregation-side rule: study aids are only
// generated for ready videos.
var ErrVideoNotReady = fmt.Errorf("video is not ready")

// Service produces and stores individual study aids (per-video quiz,
// summary). The aggregation core consumes what this service writes.
type Service struct {
	videos    VideoStore
	quizzes   QuizWriter
	summaries SummaryStore
	generator Generator
	logger    zerolog.Logger
}

func NewService(videos VideoStore, quizzes QuizWriter, summaries SummaryStore, generator Generator, logger zerolog.Logger) *Service {
	return &Service{
		videos:    videos,
		quizzes:   quizzes,
		summaries: summaries,
		generator: generator,
		logger:    logger.With().Str("component", "quizgen").Logger(),
	}
}

// GenerateQuiz produces a quiz for one video and stores it, replacing any
// previous quiz for the same language.
func (s *Service) GenerateQuiz(ctx context.Context, videoID int64, language string, questionCount int) (json.RawMessage, error) {
	v, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !v.Ready() {
		return nil, fmt.Errorf("video %d: %w", videoID, ErrVideoNotReady)
	}

	questions, model, err := s.generator.GenerateQuiz(ctx, QuizRequest{
		VideoID:       v.ID,
		VideoTitle:    v.Title,
		Language:      language,
		QuestionCount: questionCount,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz for video %d: %w", videoID, err)
	}

	if err := s.quizzes.Upsert(ctx, videoID, language, model, questions); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("video_id", videoID).Str("language", language).Str("model", model).Msg("individual quiz generated")
	return questions, nil
}

// GenerateSummary produces and stores a summary for one video.
func (s *Service) GenerateSummary(ctx context.Context, videoID int64, language string) (repository.SummaryRow, error) {
	v, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return repository.SummaryRow{}, err
	}
	if !v.Ready() {
		return repository.SummaryRow{}, fmt.Errorf("video %d: %w", videoID, ErrVideoNotReady)
	}

	summary, model, err := s.generator.GenerateSummary(ctx, SummaryRequest{
		VideoID:    v.ID,
		VideoTitle: v.Title,
		Language:   language,
	})
	if err != nil {
		return repository.SummaryRow{}, fmt.Errorf("generate summary for video %d: %w", videoID, err)
	}

	row := repository.SummaryRow{
		VideoID:  videoID,
		Language: language,
		Model:    model,
		Summary:  summary,
	}
	if err := s.summaries.Upsert(ctx, row); err != nil {
		return repository.SummaryRow{}, err
	}

	s.logger.Info().Int64("video_id", videoID).Str("language", language).Str("model", model).Msg("summary generated")
	return row, nil
}

// GetSummary reads a stored summary.
func (s *Service) GetSummary(ctx context.Context, videoID int64, language string) (repository.SummaryRow, error) {
	return s.summaries.Get(ctx, videoID, language)
}
