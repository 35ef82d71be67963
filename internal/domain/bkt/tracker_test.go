package bkt

import (
	"testing"

	"github.com/brightpath/adapt-api/internal/domain"
)

func TestUpdateMastery(t *testing.T) {
	t.Parallel()
	tracker := NewTracker(NewDefaultParams())

	testCases := []struct {
		name       string
		current    float64
		isCorrect  bool
		difficulty domain.Difficulty
		expected   float64
	}{
		{
			name:      "correct answer raises mastery",
			current:   0.3,
			isCorrect: true,
			// posterior = 0.3*0.9 / (0.3*0.9 + 0.7*0.25) = 0.27/0.445
			// new = posterior + (1-posterior)*0.2
			expected: 0.685393258427,
		},
		{
			name:      "incorrect answer lowers mastery despite learning term",
			current:   0.3,
			isCorrect: false,
			// posterior = 0.3*0.1 / (0.3*0.1 + 0.7*0.75) = 0.03/0.555
			expected: 0.243243243243,
		},
		{
			name:       "hard question uses clamped slip",
			current:    0.5,
			isCorrect:  false,
			difficulty: domain.DifficultyHard,
			// p_slip = min(0.1*1.5, 0.2) = 0.15, p_learn = min(0.2*1.2, 0.3) = 0.24
			// posterior = 0.5*0.15 / (0.5*0.15 + 0.5*0.75) = 0.166666...
			// new = 0.166666 + 0.833333*0.24
			expected: 0.366666666667,
		},
		{
			name:       "very easy question uses floored slip and learn",
			current:    0.5,
			isCorrect:  true,
			difficulty: domain.DifficultyVeryEasy,
			// p_slip = max(0.1*0.5, 0.03) = 0.05, p_learn = max(0.2*0.6, 0.05) = 0.12
			// posterior = 0.5*0.95 / (0.5*0.95 + 0.5*0.25) = 0.791666...
			expected: 0.816666666667,
		},
		{
			name:       "medium difficulty matches no difficulty",
			current:    0.3,
			isCorrect:  true,
			difficulty: domain.DifficultyMedium,
			expected:   0.685393258427,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tracker.UpdateMastery(tc.current, tc.isCorrect, tc.difficulty)

			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected mastery %.12f, got %.12f", tc.expected, got)
			}
		})
	}
}

func TestUpdateMasteryRangeInvariant(t *testing.T) {
	t.Parallel()

	// Deliberately extreme parameter combinations.
	paramSets := []*Params{
		NewDefaultParams(),
		{PInit: 0.3, PLearn: 1.0, PSlip: 0.0, PGuess: 0.0},
		{PInit: 0.3, PLearn: 0.0, PSlip: 1.0, PGuess: 1.0},
		{PInit: 0.3, PLearn: 0.99, PSlip: 0.5, PGuess: 0.5},
	}
	difficulties := []domain.Difficulty{
		"",
		domain.DifficultyVeryEasy,
		domain.DifficultyEasy,
		domain.DifficultyMedium,
		domain.DifficultyHard,
	}

	for _, params := range paramSets {
		tracker := NewTracker(params)
		for p := 0.0; p <= 1.0; p += 0.05 {
			for _, correct := range []bool{true, false} {
				for _, d := range difficulties {
					got := tracker.UpdateMastery(p, correct, d)
					if got < 0.0 || got > 1.0 {
						t.Fatalf("UpdateMastery(%v, %v, %q) = %v, out of [0,1] with params %+v",
							p, correct, d, got, params)
					}
				}
			}
		}
	}
}

func TestUpdateMasteryCorrectBeatsIncorrect(t *testing.T) {
	t.Parallel()

	// Holds whenever p_slip + p_guess < 1, the standard BKT regime.
	tracker := NewTracker(NewDefaultParams())
	difficulties := []domain.Difficulty{
		"",
		domain.DifficultyVeryEasy,
		domain.DifficultyEasy,
		domain.DifficultyMedium,
		domain.DifficultyHard,
	}

	for _, d := range difficulties {
		for p := 0.05; p < 1.0; p += 0.05 {
			afterCorrect := tracker.UpdateMastery(p, true, d)
			afterIncorrect := tracker.UpdateMastery(p, false, d)
			if afterCorrect <= afterIncorrect {
				t.Errorf("difficulty %q, p=%v: correct (%v) should exceed incorrect (%v)",
					d, p, afterCorrect, afterIncorrect)
			}
		}
	}
}

func TestUpdateMasteryZeroDenominator(t *testing.T) {
	t.Parallel()

	// Mastery 0 with zero guess probability makes a correct answer
	// impossible under the model; the estimate must pass through unchanged
	// (learning transition still applies afterward with p_learn > 0, so use
	// zero learn rate to observe the raw fallback).
	tracker := NewTracker(&Params{PInit: 0.3, PLearn: 0.0, PSlip: 0.0, PGuess: 0.0})

	if got := tracker.UpdateMastery(0.0, true, ""); got != 0.0 {
		t.Errorf("expected unchanged mastery 0.0, got %v", got)
	}
	if got := tracker.UpdateMastery(1.0, false, ""); got != 1.0 {
		t.Errorf("expected unchanged mastery 1.0, got %v", got)
	}
}

func TestInitializeSkillIsConstant(t *testing.T) {
	t.Parallel()
	tracker := NewTracker(NewDefaultParams())

	first := tracker.InitializeSkill()
	if first != 0.3 {
		t.Fatalf("expected default prior 0.3, got %v", first)
	}
	for i := 0; i < 10; i++ {
		if got := tracker.InitializeSkill(); got != first {
			t.Fatalf("prior changed between calls: %v != %v", got, first)
		}
	}
}

func TestAdjustForDifficultyClampBounds(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		params        Params
		difficulty    domain.Difficulty
		expectedSlip  float64
		expectedLearn float64
	}{
		{
			name:          "hard hits slip ceiling with large base slip",
			params:        Params{PSlip: 0.18, PLearn: 0.2},
			difficulty:    domain.DifficultyHard,
			expectedSlip:  0.2, // 0.18*1.5 = 0.27, capped
			expectedLearn: 0.24,
		},
		{
			name:          "hard hits learn ceiling with large base learn",
			params:        Params{PSlip: 0.1, PLearn: 0.29},
			difficulty:    domain.DifficultyHard,
			expectedSlip:  0.15,
			expectedLearn: 0.3, // 0.29*1.2 = 0.348, capped
		},
		{
			name:          "easy hits slip floor with small base slip",
			params:        Params{PSlip: 0.04, PLearn: 0.2},
			difficulty:    domain.DifficultyEasy,
			expectedSlip:  0.05, // 0.04*0.7 = 0.028, floored
			expectedLearn: 0.16,
		},
		{
			name:          "very easy hits both floors",
			params:        Params{PSlip: 0.04, PLearn: 0.06},
			difficulty:    domain.DifficultyVeryEasy,
			expectedSlip:  0.03, // 0.04*0.5 = 0.02, floored
			expectedLearn: 0.05, // 0.06*0.6 = 0.036, floored
		},
		{
			name:          "medium leaves base values untouched",
			params:        Params{PSlip: 0.1, PLearn: 0.2},
			difficulty:    domain.DifficultyMedium,
			expectedSlip:  0.1,
			expectedLearn: 0.2,
		},
		{
			name:          "missing difficulty leaves base values untouched",
			params:        Params{PSlip: 0.1, PLearn: 0.2},
			difficulty:    "",
			expectedSlip:  0.1,
			expectedLearn: 0.2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slip, learn := tc.params.adjustForDifficulty(tc.difficulty)

			if diff := slip - tc.expectedSlip; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("Expected slip %v, got %v", tc.expectedSlip, slip)
			}
			if diff := learn - tc.expectedLearn; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("Expected learn %v, got %v", tc.expectedLearn, learn)
			}
		})
	}
}
