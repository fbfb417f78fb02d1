package cumulative

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Question types accepted from the per-video quiz store.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
)

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// SourceQuestion is a question as stored inside an individual video quiz.
// The correct answer may arrive under either field naming and as a string,
// boolean or option index; normalization happens in the combiner.
type SourceQuestion struct {
	Text        string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	AnswerCamel any      `json:"correctAnswer,omitempty"`
	AnswerSnake any      `json:"correct_answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Timestamp   *float64 `json:"timestamp,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
}

// VideoContext annotates a combined question with its source video.
// Position is the 1-based index in the resolved series order at generation
// time, not whatever position the video entity itself carries.
type VideoContext struct {
	VideoID   int64    `json:"video_id,string"`
	Title     string   `json:"video_title"`
	Position  int      `json:"position"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// CombinedQuestion is a source question folded into a cumulative quiz, with
// the answer coerced to a single string representation.
type CombinedQuestion struct {
	Text         string       `json:"question"`
	Type         string       `json:"type"`
	Options      []string     `json:"options,omitempty"`
	Answer       string       `json:"answer"`
	Explanation  string       `json:"explanation,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	VideoContext VideoContext `json:"video_context"`
}

// Quiz is the persisted cumulative quiz for one (anchor video, language)
// pair. IncludedVideoIDs is exactly the resolver output at generation time,
// truncated at the anchor; the consistency guard compares against it and
// nothing else.
type Quiz struct {
	ID               uuid.UUID          `json:"id"`
	VideoID          int64              `json:"video_id,string"`
	SeriesID         int64              `json:"series_id,string"`
	Language         string             `json:"language"`
	Model            string             `json:"model"`
	Questions        []CombinedQuestion `json:"questions"`
	IncludedVideoIDs []int64            `json:"included_video_ids"`
	VideoCount       int                `json:"video_count"`
	ProcessingMS     int64              `json:"processing_ms"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// Contribution states for one member video during combination. Distinct
// from a boolean so that "had no quiz" and "quiz unreadable" stay
// observable in logs and diagnostics.
const (
	ContributionFull  = "full"
	ContributionEmpty = "empty"
	ContributionError = "error"
)

// MemberContribution records what one series member added to the aggregate.
type MemberContribution struct {
	VideoID       int64  `json:"video_id,string"`
	Position      int    `json:"position"`
	State         string `json:"state"`
	QuestionCount int    `json:"question_count"`
}

// DecodeQuestions parses the raw JSONB question list of an individual quiz.
func DecodeQuestions(raw json.RawMessage) ([]SourceQuestion, error) {
	var qs []SourceQuestion
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}
