package cumulative

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillstream/study-platform/internal/series"
)

func member(videoID int64, position int, questions ...SourceQuestion) MemberQuiz {
	return MemberQuiz{
		Position:  series.Position{VideoID: videoID, Title: "Video", Position: position},
		Questions: questions,
	}
}

func TestCombinePreservesVideoThenQuestionOrder(t *testing.T) {
	members := []MemberQuiz{
		member(1, 1,
			SourceQuestion{Text: "a1", Type: TypeTrueFalse, AnswerCamel: true},
			SourceQuestion{Text: "a2", Type: TypeTrueFalse, AnswerCamel: false},
		),
		member(2, 2,
			SourceQuestion{Text: "b1", Type: TypeTrueFalse, AnswerCamel: true},
		),
	}

	combined, dropped := Combine(members, zerolog.Nop())
	require.Len(t, combined, 3)
	assert.Zero(t, dropped)
	assert.Equal(t, "a1", combined[0].Text)
	assert.Equal(t, "a2", combined[1].Text)
	assert.Equal(t, "b1", combined[2].Text)
	assert.Equal(t, 1, combined[0].VideoContext.Position)
	assert.Equal(t, 2, combined[2].VideoContext.Position)
}

func TestCombineDropsAnswerlessQuestions(t *testing.T) {
	members := []MemberQuiz{
		member(1, 1,
			SourceQuestion{Text: "keep-1", Type: TypeTrueFalse, AnswerCamel: true},
			SourceQuestion{Text: "drop-me", Type: TypeMultipleChoice, Options: []string{"x", "y"}},
			SourceQuestion{Text: "keep-2", Type: TypeTrueFalse, AnswerSnake: false},
		),
	}

	combined, dropped := Combine(members, zerolog.Nop())
	require.Len(t, combined, 2)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "keep-1", combined[0].Text)
	assert.Equal(t, "keep-2", combined[1].Text)
}

func TestCombineAnswerNormalization(t *testing.T) {
	members := []MemberQuiz{
		member(1, 1,
			// camelCase wins over snake_case when both are set
			SourceQuestion{Text: "dual", Type: TypeMultipleChoice, Options: []string{"a", "b"}, AnswerCamel: "a", AnswerSnake: "b"},
			// booleans become "true"/"false"
			SourceQuestion{Text: "bool", Type: TypeTrueFalse, AnswerSnake: true},
			// numeric answers index into options
			SourceQuestion{Text: "index", Type: TypeMultipleChoice, Options: []string{"red", "green", "blue"}, AnswerCamel: float64(2)},
			// out-of-range numbers fall back to their string form
			SourceQuestion{Text: "oob", Type: TypeMultipleChoice, Options: []string{"one"}, AnswerCamel: float64(7)},
		),
	}

	combined, dropped := Combine(members, zerolog.Nop())
	require.Len(t, combined, 4)
	assert.Zero(t, dropped)
	assert.Equal(t, "a", combined[0].Answer)
	assert.Equal(t, "true", combined[1].Answer)
	assert.Equal(t, "blue", combined[2].Answer)
	assert.Equal(t, "7", combined[3].Answer)
}

func TestCombineAnnotatesVideoContext(t *testing.T) {
	ts := 42.5
	members := []MemberQuiz{
		{
			Position: series.Position{VideoID: 9, Title: "Intro to Go", Position: 3},
			Questions: []SourceQuestion{
				{Text: "q", Type: TypeTrueFalse, AnswerCamel: true, Timestamp: &ts},
			},
		},
	}

	combined, _ := Combine(members, zerolog.Nop())
	require.Len(t, combined, 1)
	ctx := combined[0].VideoContext
	assert.Equal(t, int64(9), ctx.VideoID)
	assert.Equal(t, "Intro to Go", ctx.Title)
	assert.Equal(t, 3, ctx.Position)
	require.NotNil(t, ctx.Timestamp)
	assert.Equal(t, 42.5, *ctx.Timestamp)
}

func TestCombineEmptyMembersYieldNothing(t *testing.T) {
	members := []MemberQuiz{member(1, 1), member(2, 2)}

	combined, dropped := Combine(members, zerolog.Nop())
	assert.Empty(t, combined)
	assert.Zero(t, dropped)
}
