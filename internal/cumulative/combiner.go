package cumulative

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/series"
)

// MemberQuiz pairs a resolved series position with the questions of that
// video's individual quiz. Questions is nil for members without a quiz.
type MemberQuiz struct {
	Position  series.Position
	Questions []SourceQuestion
}

// Combine merges per-video quizzes into one cumulative question list. Order
// is video order first, then the stored question order within each video;
// difficulty and type never reorder anything. Questions with no resolvable
// correct answer are dropped with a diagnostic rather than failing the
// whole aggregate.
func Combine(members []MemberQuiz, logger zerolog.Logger) ([]CombinedQuestion, int) {
	var combined []CombinedQuestion
	dropped := 0

	for _, m := range members {
		for i, q := range m.Questions {
			answer, ok := resolveAnswer(q)
			if !ok {
				dropped++
				logger.Warn().
					Int64("video_id", m.Position.VideoID).
					Int("question_index", i).
					Msg("question missing correct answer, dropped from cumulative quiz")
				continue
			}
			combined = append(combined, CombinedQuestion{
				Text:        q.Text,
				Type:        q.Type,
				Options:     q.Options,
				Answer:      answer,
				Explanation: q.Explanation,
				Difficulty:  q.Difficulty,
				VideoContext: VideoContext{
					VideoID:   m.Position.VideoID,
					Title:     m.Position.Title,
					Position:  m.Position.Position,
					Timestamp: q.Timestamp,
				},
			})
		}
	}
	return combined, dropped
}

// resolveAnswer normalizes the dual-named correct-answer field to a string.
// camelCase wins when both namings are present (first-seen precedence in
// the upstream generator output). Booleans map to "true"/"false"; numeric
// answers are treated as option indexes when they address a valid option.
func resolveAnswer(q SourceQuestion) (string, bool) {
	raw := q.AnswerCamel
	if raw == nil {
		raw = q.AnswerSnake
	}
	if raw == nil {
		return "", false
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		idx := int(v)
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx], true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		if v >= 0 && v < len(q.Options) {
			return q.Options[v], true
		}
		return strconv.Itoa(v), true
	}
	return "", false
}
