package bkt

import (
	"log/slog"

	"github.com/brightpath/adapt-api/internal/domain"
)

// Tracker maintains per-skill mastery estimates using a two-stage Bayesian
// filter over a latent "knows the skill" variable. A Tracker holds only its
// fixed base parameters; every update is a pure function of its arguments,
// so a single Tracker is safe for concurrent use.
type Tracker struct {
	params *Params
}

// NewTracker creates a Tracker with the given parameters.
// A nil params uses the defaults.
func NewTracker(params *Params) *Tracker {
	if params == nil {
		params = NewDefaultParams()
	}
	return &Tracker{params: params}
}

// InitializeSkill returns the prior mastery estimate for a skill that has not
// been practiced yet. The prior is the same for every skill.
func (t *Tracker) InitializeSkill() float64 {
	return t.params.PInit
}

// UpdateMastery returns the new mastery estimate after observing one answer.
//
// The update has three stages: slip and learn probabilities are adjusted for
// the question difficulty, the estimate is conditioned on the observed
// correctness via Bayes' rule, and finally the learning transition
// posterior + (1-posterior)*pLearn is applied. A difficulty outside the known
// levels (including the empty string) leaves the base parameters untouched.
//
// The result is clamped to [0, 1]. The clamp should never fire for sane
// parameters; when it does, the event is logged at debug level.
func (t *Tracker) UpdateMastery(currentMastery float64, isCorrect bool, difficulty domain.Difficulty) float64 {
	pSlip, pLearn := t.params.adjustForDifficulty(difficulty)
	pGuess := t.params.PGuess

	// Condition the latent mastery variable on the observed answer.
	var numerator, denominator float64
	if isCorrect {
		numerator = currentMastery * (1 - pSlip)
		denominator = currentMastery*(1-pSlip) + (1-currentMastery)*pGuess
	} else {
		numerator = currentMastery * pSlip
		denominator = currentMastery*pSlip + (1-currentMastery)*(1-pGuess)
	}

	// A zero denominator means the observation was impossible under the
	// model (e.g. mastery exactly 0 with zero guess probability). Keep the
	// current estimate rather than dividing by zero.
	posterior := currentMastery
	if denominator > 0 {
		posterior = numerator / denominator
	}

	// Learning transition: one practice opportunity has occurred.
	newMastery := posterior + (1-posterior)*pLearn

	if newMastery < 0.0 || newMastery > 1.0 {
		slog.Debug("mastery estimate clamped to [0,1]",
			"raw", newMastery,
			"current", currentMastery,
			"is_correct", isCorrect,
			"difficulty", string(difficulty))
		newMastery = min(max(newMastery, 0.0), 1.0)
	}

	return newMastery
}
