package bkt

import (
	"github.com/brightpath/adapt-api/internal/domain"
)

// Params defines the four base probabilities of the knowledge tracing model.
type Params struct {
	// PInit is the prior probability that a learner has already mastered a
	// skill before any evidence is seen.
	PInit float64

	// PLearn is the probability of transitioning to the mastered state at
	// each practice opportunity.
	PLearn float64

	// PSlip is the probability of answering incorrectly despite mastery.
	PSlip float64

	// PGuess is the probability of answering correctly despite non-mastery.
	PGuess float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values fall back to the defaults.
type ParamsConfig struct {
	PInit  float64
	PLearn float64
	PSlip  float64
	PGuess float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		PInit:  0.3,
		PLearn: 0.2,
		PSlip:  0.1,
		PGuess: 0.25,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.PInit > 0 {
		params.PInit = config.PInit
	}
	if config.PLearn > 0 {
		params.PLearn = config.PLearn
	}
	if config.PSlip > 0 {
		params.PSlip = config.PSlip
	}
	if config.PGuess > 0 {
		params.PGuess = config.PGuess
	}

	return params
}

// adjustForDifficulty scales slip and learn probabilities for the question's
// difficulty. The bounds are hard floors and ceilings, not proportional
// scaling: p_slip for a hard question never exceeds 0.2 no matter the base.
// Guess probability is unaffected. Medium (or unknown) difficulty uses the
// base values unchanged.
func (p *Params) adjustForDifficulty(difficulty domain.Difficulty) (pSlip, pLearn float64) {
	pSlip = p.PSlip
	pLearn = p.PLearn

	switch difficulty {
	case domain.DifficultyHard:
		pSlip = min(p.PSlip*1.5, 0.2)
		pLearn = min(p.PLearn*1.2, 0.3)
	case domain.DifficultyEasy:
		pSlip = max(p.PSlip*0.7, 0.05)
		pLearn = max(p.PLearn*0.8, 0.1)
	case domain.DifficultyVeryEasy:
		pSlip = max(p.PSlip*0.5, 0.03)
		pLearn = max(p.PLearn*0.6, 0.05)
	}

	return pSlip, pLearn
}
