package cumulative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/series"
)

var (
	// ErrDisabled is returned when cumulative quizzes are switched off in
	// configuration.
	ErrDisabled = errors.New("cumulative quiz generation is disabled")
	// ErrVideoNotReady is returned when the anchor video exists but is not
	// in the ready state.
	ErrVideoNotReady = errors.New("video is not ready")
	// ErrNotInSeries is returned when the anchor video has no series.
	ErrNotInSeries = errors.New("video is not part of a series")
	// ErrNoMembers is returned when the resolved member prefix is empty.
	ErrNoMembers = errors.New("no series members to aggregate")
)

// QuizCache is the fast-cache contract (implemented by the Redis Cache).
type QuizCache interface {
	Get(ctx context.Context, videoID int64, language string) (*Quiz, error)
	Set(ctx context.Context, quiz *Quiz) error
	Invalidate(ctx context.Context, videoID int64, language string) error
}

// RecordStore is the durable-store contract for cumulative quiz records.
type RecordStore interface {
	Get(ctx context.Context, videoID int64, language string) (repository.CumulativeQuizRow, bool, error)
	Upsert(ctx context.Context, row repository.CumulativeQuizRow) error
	Delete(ctx context.Context, videoID int64, language string) error
	DeleteBySeries(ctx context.Context, seriesID int64) ([]repository.CumulativeQuizKey, error)
}

// ServiceOptions carries the configuration the orchestrator needs at call
// time. The enabled flag is explicit here rather than read from ambient
// state so tests and callers see exactly what gates a generation.
type ServiceOptions struct {
	Enabled          bool
	Model            string
	FetchConcurrency int
}

// Service composes the resolver, evaluator, combiner and guard into the
// end-to-end generate-or-reuse operation and owns the read-through /
// write-through caching discipline.
type Service struct {
	videos    VideoStore
	quizzes   QuizStore
	records   RecordStore
	cache     QuizCache
	resolver  *series.Resolver
	evaluator *Evaluator
	guard     *Guard
	opts      ServiceOptions
	logger    zerolog.Logger
}

func NewService(videos VideoStore, quizzes QuizStore, records RecordStore, cache QuizCache, resolver *series.Resolver, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 4
	}
	log := logger.With().Str("component", "cumulative").Logger()
	return &Service{
		videos:    videos,
		quizzes:   quizzes,
		records:   records,
		cache:     cache,
		resolver:  resolver,
		evaluator: NewEvaluator(videos, quizzes, resolver),
		guard:     NewGuard(resolver, log),
		opts:      opts,
		logger:    log,
	}
}

// CheckEligibility runs the evaluator gates for an anchor video. The result
// is never cached; membership and quiz availability drift.
func (s *Service) CheckEligibility(ctx context.Context, videoID int64, language string) (EligibilityResult, error) {
	if !s.opts.Enabled {
		return EligibilityResult{}, ErrDisabled
	}
	return s.evaluator.Check(ctx, videoID, language)
}

// GetCached returns the stored cumulative quiz without triggering
// generation. The guard is not consulted here; staleness handling belongs
// to Generate.
func (s *Service) GetCached(ctx context.Context, videoID int64, language string) (*Quiz, error) {
	if cached, err := s.cache.Get(ctx, videoID, language); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("cache read failed, falling back to store")
	}

	row, found, err := s.records.Get(ctx, videoID, language)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	quiz, err := fromRow(row)
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// Generate produces (or reuses) the cumulative quiz for an anchor video.
// Eligibility is deliberately NOT re-checked here: callers that skip
// CheckEligibility get a possibly zero-question aggregate, not an error.
func (s *Service) Generate(ctx context.Context, videoID int64, language string, force bool) (*Quiz, error) {
	if !s.opts.Enabled {
		return nil, ErrDisabled
	}

	if !force {
		if quiz := s.readValidated(ctx, videoID, language); quiz != nil {
			generationsTotal.WithLabelValues("reused").Inc()
			return quiz, nil
		}
	}

	started := time.Now()

	v, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !v.Ready() {
		return nil, fmt.Errorf("video %d: %w", videoID, ErrVideoNotReady)
	}
	if v.SeriesID == nil {
		return nil, fmt.Errorf("video %d: %w", videoID, ErrNotInSeries)
	}

	positions, err := s.resolver.PositionsUpTo(ctx, *v.SeriesID, videoID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("series %d: %w", *v.SeriesID, ErrNoMembers)
	}

	members, contributions, err := s.fetchMemberQuizzes(ctx, positions, language)
	if err != nil {
		return nil, err
	}

	questions, dropped := Combine(members, s.logger)
	if dropped > 0 {
		droppedQuestions.Add(float64(dropped))
	}

	included := make([]int64, len(positions))
	for i, p := range positions {
		included[i] = p.VideoID
	}

	quiz := &Quiz{
		ID:               uuid.New(),
		VideoID:          videoID,
		SeriesID:         *v.SeriesID,
		Language:         language,
		Model:            s.opts.Model,
		Questions:        questions,
		IncludedVideoIDs: included,
		VideoCount:       len(included),
		ProcessingMS:     time.Since(started).Milliseconds(),
		GeneratedAt:      time.Now().UTC(),
	}

	row, err := toRow(quiz)
	if err != nil {
		return nil, err
	}
	if err := s.records.Upsert(ctx, row); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, quiz); err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("cache write-through failed")
	}

	generationsTotal.WithLabelValues("generated").Inc()
	generationDuration.Observe(time.Since(started).Seconds())
	s.logger.Info().
		Int64("video_id", videoID).
		Int64("series_id", quiz.SeriesID).
		Str("language", language).
		Int("members", quiz.VideoCount).
		Int("questions", len(questions)).
		Any("contributions", contributions).
		Msg("cumulative quiz generated")

	return quiz, nil
}

// Delete removes a stored cumulative quiz and invalidates its cache entry.
func (s *Service) Delete(ctx context.Context, videoID int64, language string) error {
	if err := s.records.Delete(ctx, videoID, language); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, videoID, language); err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("cache invalidation failed after delete")
	}
	return nil
}

// DeleteSeries bulk-deletes every cumulative quiz anchored in a series,
// invalidating the matching cache entries.
func (s *Service) DeleteSeries(ctx context.Context, seriesID int64) (int, error) {
	keys, err := s.records.DeleteBySeries(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := s.cache.Invalidate(ctx, k.VideoID, k.Language); err != nil {
			s.logger.Warn().Err(err).Int64("video_id", k.VideoID).Msg("cache invalidation failed during bulk delete")
		}
	}
	return len(keys), nil
}

// readValidated tries the fast cache first and the durable store second,
// returning the stored quiz only when the guard confirms its member set is
// still current.
func (s *Service) readValidated(ctx context.Context, videoID int64, language string) *Quiz {
	if cached, err := s.cache.Get(ctx, videoID, language); err == nil && cached != nil {
		if s.guard.IsValid(ctx, cached) {
			cacheLookups.WithLabelValues("hit").Inc()
			return cached
		}
		cacheLookups.WithLabelValues("stale").Inc()
		return nil
	} else if err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("cache read failed")
	}
	cacheLookups.WithLabelValues("miss").Inc()

	row, found, err := s.records.Get(ctx, videoID, language)
	if err != nil || !found {
		return nil
	}
	stored, err := fromRow(row)
	if err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("stored quiz unreadable, regenerating")
		return nil
	}
	if !s.guard.IsValid(ctx, stored) {
		return nil
	}
	// Re-warm the fast cache from the durable copy.
	if err := s.cache.Set(ctx, stored); err != nil {
		s.logger.Warn().Err(err).Int64("video_id", videoID).Msg("cache re-warm failed")
	}
	return stored
}

// fetchMemberQuizzes loads every member's individual quiz concurrently.
// Results are slotted by index so the combined order never depends on
// completion order. A missing quiz is an empty contribution; an unreadable
// one is an error contribution. Neither fails the aggregate.
func (s *Service) fetchMemberQuizzes(ctx context.Context, positions []series.Position, language string) ([]MemberQuiz, []MemberContribution, error) {
	members := make([]MemberQuiz, len(positions))
	contributions := make([]MemberContribution, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)

	for i, p := range positions {
		g.Go(func() error {
			members[i] = MemberQuiz{Position: p}
			contributions[i] = MemberContribution{VideoID: p.VideoID, Position: p.Position, State: ContributionEmpty}

			raw, found, err := s.quizzes.GetQuestions(gctx, p.VideoID, language)
			if err != nil {
				return err // infrastructure failure, abort the whole fetch
			}
			if !found {
				return nil
			}

			qs, err := DecodeQuestions(raw)
			if err != nil {
				contributions[i].State = ContributionError
				s.logger.Warn().Err(err).Int64("video_id", p.VideoID).Msg("stored quiz undecodable, contributing zero questions")
				return nil
			}
			members[i].Questions = qs
			contributions[i].State = ContributionFull
			contributions[i].QuestionCount = len(qs)
			if len(qs) == 0 {
				contributions[i].State = ContributionEmpty
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return members, contributions, nil
}

func toRow(q *Quiz) (repository.CumulativeQuizRow, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return repository.CumulativeQuizRow{}, fmt.Errorf("encode questions: %w", err)
	}
	return repository.CumulativeQuizRow{
		ID:               q.ID,
		VideoID:          q.VideoID,
		SeriesID:         q.SeriesID,
		Language:         q.Language,
		Model:            q.Model,
		Questions:        questions,
		IncludedVideoIDs: q.IncludedVideoIDs,
		VideoCount:       q.VideoCount,
		ProcessingMS:     q.ProcessingMS,
		GeneratedAt:      q.GeneratedAt,
	}, nil
}

func fromRow(row repository.CumulativeQuizRow) (*Quiz, error) {
	var questions []CombinedQuestion
	if len(row.Questions) > 0 {
		if err := json.Unmarshal(row.Questions, &questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	}
	return &Quiz{
		ID:               row.ID,
		VideoID:          row.VideoID,
		SeriesID:         row.SeriesID,
		Language:         row.Language,
		Model:            row.Model,
		Questions:        questions,
		IncludedVideoIDs: row.IncludedVideoIDs,
		VideoCount:       row.VideoCount,
		ProcessingMS:     row.ProcessingMS,
		GeneratedAt:      row.GeneratedAt,
	}, nil
}
