package domain

import (
	"errors"
	"strings"
)

// Difficulty is the ordinal difficulty level of a question.
type Difficulty string

// Difficulty levels, ordered from easiest to hardest.
const (
	DifficultyVeryEasy Difficulty = "very_easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
)

// difficultyRanks maps each difficulty to its ordinal position.
var difficultyRanks = map[Difficulty]int{
	DifficultyVeryEasy: 0,
	DifficultyEasy:     1,
	DifficultyMedium:   2,
	DifficultyHard:     3,
}

// Rank returns the ordinal position of the difficulty (very_easy=0 .. hard=3).
// Unknown difficulties rank as medium so malformed data sorts mid-pool rather
// than at an extreme.
func (d Difficulty) Rank() int {
	if rank, ok := difficultyRanks[d]; ok {
		return rank
	}
	return difficultyRanks[DifficultyMedium]
}

// IsValid reports whether the difficulty is one of the known levels.
func (d Difficulty) IsValid() bool {
	_, ok := difficultyRanks[d]
	return ok
}

// ParseDifficulty converts a string to a Difficulty.
// Returns ErrInvalidDifficulty for unknown values.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDifficulty
	}
	return d, nil
}

// Question-specific validation errors
var (
	// ErrQuestionIDEmpty is returned when a question ID is empty.
	ErrQuestionIDEmpty = errors.New("question ID cannot be empty")

	// ErrQuestionTextEmpty is returned when a question has no text.
	ErrQuestionTextEmpty = errors.New("question text cannot be empty")

	// ErrQuestionSkillEmpty is returned when a question has no skill tag.
	ErrQuestionSkillEmpty = errors.New("question skill cannot be empty")

	// ErrQuestionAnswerEmpty is returned when a question has no correct answer.
	ErrQuestionAnswerEmpty = errors.New("question correct answer cannot be empty")
)

// Question represents a single multiple-choice or short-answer question in
// the pool. Questions are immutable once created; the selection engine only
// reads them.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options,omitempty"`
	CorrectAnswer string     `json:"correct_answer"`
	Skill         string     `json:"skill"`
	Difficulty    Difficulty `json:"difficulty"`
	Subject       string     `json:"subject"`
}

// NewQuestion creates a Question and validates it.
func NewQuestion(
	id, text string,
	options []string,
	correctAnswer, skill string,
	difficulty Difficulty,
	subject string,
) (*Question, error) {
	q := &Question{
		ID:            id,
		Text:          text,
		Options:       options,
		CorrectAnswer: correctAnswer,
		Skill:         skill,
		Difficulty:    difficulty,
		Subject:       subject,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the Question has valid data.
// Returns an error if any field fails validation.
func (q *Question) Validate() error {
	if q.ID == "" {
		return ErrQuestionIDEmpty
	}

	if q.Text == "" {
		return ErrQuestionTextEmpty
	}

	if q.Skill == "" {
		return ErrQuestionSkillEmpty
	}

	if q.CorrectAnswer == "" {
		return ErrQuestionAnswerEmpty
	}

	if !q.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}

	return nil
}

// CheckAnswer reports whether the given answer matches the correct answer.
// Comparison ignores surrounding whitespace and letter case.
func (q *Question) CheckAnswer(answer string) bool {
	return strings.EqualFold(
		strings.TrimSpace(answer),
		strings.TrimSpace(q.CorrectAnswer),
	)
}
