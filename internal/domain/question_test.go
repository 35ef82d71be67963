package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/adapt-api/internal/domain"
)

func TestParseDifficulty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    domain.Difficulty
		wantErr error
	}{
		{name: "very easy", input: "very_easy", want: domain.DifficultyVeryEasy},
		{name: "easy", input: "easy", want: domain.DifficultyEasy},
		{name: "medium", input: "medium", want: domain.DifficultyMedium},
		{name: "hard", input: "hard", want: domain.DifficultyHard},
		{name: "mixed case", input: "Medium", want: domain.DifficultyMedium},
		{name: "surrounding whitespace", input: "  hard ", want: domain.DifficultyHard},
		{name: "unknown level", input: "impossible", wantErr: domain.ErrInvalidDifficulty},
		{name: "empty", input: "", wantErr: domain.ErrInvalidDifficulty},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := domain.ParseDifficulty(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDifficultyRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, domain.DifficultyVeryEasy.Rank())
	assert.Equal(t, 1, domain.DifficultyEasy.Rank())
	assert.Equal(t, 2, domain.DifficultyMedium.Rank())
	assert.Equal(t, 3, domain.DifficultyHard.Rank())

	// Unknown difficulties sort with medium instead of at an extreme.
	assert.Equal(t, 2, domain.Difficulty("bogus").Rank())
}

func TestNewQuestionValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		id            string
		text          string
		correctAnswer string
		skill         string
		difficulty    domain.Difficulty
		wantErr       error
	}{
		{
			name:          "valid question",
			id:            "q1",
			text:          "What is 2 + 2?",
			correctAnswer: "4",
			skill:         "addition",
			difficulty:    domain.DifficultyEasy,
		},
		{
			name:          "empty ID",
			text:          "What is 2 + 2?",
			correctAnswer: "4",
			skill:         "addition",
			difficulty:    domain.DifficultyEasy,
			wantErr:       domain.ErrQuestionIDEmpty,
		},
		{
			name:          "empty text",
			id:            "q1",
			correctAnswer: "4",
			skill:         "addition",
			difficulty:    domain.DifficultyEasy,
			wantErr:       domain.ErrQuestionTextEmpty,
		},
		{
			name:       "empty correct answer",
			id:         "q1",
			text:       "What is 2 + 2?",
			skill:      "addition",
			difficulty: domain.DifficultyEasy,
			wantErr:    domain.ErrQuestionAnswerEmpty,
		},
		{
			name:          "empty skill",
			id:            "q1",
			text:          "What is 2 + 2?",
			correctAnswer: "4",
			difficulty:    domain.DifficultyEasy,
			wantErr:       domain.ErrQuestionSkillEmpty,
		},
		{
			name:          "invalid difficulty",
			id:            "q1",
			text:          "What is 2 + 2?",
			correctAnswer: "4",
			skill:         "addition",
			difficulty:    domain.Difficulty("brutal"),
			wantErr:       domain.ErrInvalidDifficulty,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q, err := domain.NewQuestion(
				tc.id, tc.text, []string{"3", "4", "5"},
				tc.correctAnswer, tc.skill, tc.difficulty, "math")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, q)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, q)
			assert.Equal(t, tc.id, q.ID)
		})
	}
}

func TestQuestionCheckAnswer(t *testing.T) {
	t.Parallel()

	q, err := domain.NewQuestion(
		"q1", "Largest planet?", []string{"Mars", "Jupiter"},
		"Jupiter", "astronomy", domain.DifficultyEasy, "science")
	require.NoError(t, err)

	assert.True(t, q.CheckAnswer("Jupiter"))
	assert.True(t, q.CheckAnswer("jupiter"))
	assert.True(t, q.CheckAnswer("  JUPITER  "))
	assert.False(t, q.CheckAnswer("Mars"))
	assert.False(t, q.CheckAnswer(""))
}
