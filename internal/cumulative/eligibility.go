package cumulative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/series"
	"github.com/skillstream/study-platform/internal/video"
)

// Ineligibility reasons, one per evaluator gate. The first failing gate
// wins; later gates are never evaluated.
const (
	ReasonVideoNotFound  = "video not found"
	ReasonVideoNotReady  = "video is not ready"
	ReasonNoSeries       = "not part of a series"
	ReasonNoOwnQuiz      = "generate regular quiz first"
	ReasonFirstInSeries  = "first video, no predecessor to aggregate"
	ReasonNoPriorQuizzes = "no previous video has a quiz yet"
	ReasonNotPositioned  = "video not positioned in series"
)

// VideoStore looks up a single video. Implemented by the video repository.
type VideoStore interface {
	GetVideo(ctx context.Context, id int64) (video.Video, error)
}

// QuizStore reads individually stored per-video quizzes.
type QuizStore interface {
	// GetQuestions returns the raw question list, or found=false when no
	// quiz exists for the (video, language) pair.
	GetQuestions(ctx context.Context, videoID int64, language string) (json.RawMessage, bool, error)
	// HasQuizzes reports quiz existence for a batch of videos.
	HasQuizzes(ctx context.Context, videoIDs []int64, language string) (map[int64]bool, error)
}

// EligibilityResult is the terminal outcome of the evaluator. Business
// ineligibility is a result, never an error.
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`

	// Diagnostics, populated when eligible.
	Position           int `json:"position,omitempty"`
	SeriesSize         int `json:"series_size,omitempty"`
	PredecessorQuizzes int `json:"predecessor_quizzes,omitempty"`
}

// Evaluator decides whether a cumulative quiz may be generated for an
// anchor video. The decision is recomputed on every call: series membership
// and individual quiz availability both drift over time.
type Evaluator struct {
	videos   VideoStore
	quizzes  QuizStore
	resolver *series.Resolver
}

func NewEvaluator(videos VideoStore, quizzes QuizStore, resolver *series.Resolver) *Evaluator {
	return &Evaluator{videos: videos, quizzes: quizzes, resolver: resolver}
}

func ineligible(reason string) EligibilityResult {
	return EligibilityResult{Eligible: false, Reason: reason}
}

// Check runs the sequential gates, short-circuiting at the first failure.
// Only infrastructure failures surface as errors.
func (e *Evaluator) Check(ctx context.Context, videoID int64, language string) (EligibilityResult, error) {
	v, err := e.videos.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ineligible(ReasonVideoNotFound), nil
		}
		return EligibilityResult{}, fmt.Errorf("load video %d: %w", videoID, err)
	}
	if !v.Ready() {
		return ineligible(ReasonVideoNotReady), nil
	}
	if v.SeriesID == nil {
		return ineligible(ReasonNoSeries), nil
	}

	_, hasOwn, err := e.quizzes.GetQuestions(ctx, videoID, language)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("load quiz for video %d: %w", videoID, err)
	}
	if !hasOwn {
		return ineligible(ReasonNoOwnQuiz), nil
	}

	positions, err := e.resolver.Positions(ctx, *v.SeriesID)
	if err != nil {
		return EligibilityResult{}, err
	}

	anchorPos := 0
	for _, p := range positions {
		if p.VideoID == videoID {
			anchorPos = p.Position
			break
		}
	}
	if anchorPos == 0 {
		// Ready but not in the resolved order: data drifted between lookups.
		return ineligible(ReasonNotPositioned), nil
	}
	if anchorPos == 1 {
		return ineligible(ReasonFirstInSeries), nil
	}

	predecessors := make([]int64, 0, anchorPos-1)
	for _, p := range positions[:anchorPos-1] {
		predecessors = append(predecessors, p.VideoID)
	}

	existing, err := e.quizzes.HasQuizzes(ctx, predecessors, language)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("check predecessor quizzes: %w", err)
	}
	withQuiz := 0
	for _, id := range predecessors {
		if existing[id] {
			withQuiz++
		}
	}
	if withQuiz == 0 {
		return ineligible(ReasonNoPriorQuizzes), nil
	}

	return EligibilityResult{
		Eligible:           true,
		Position:           anchorPos,
		SeriesSize:         len(positions),
		PredecessorQuizzes: withQuiz,
	}, nil
}
