package bkt

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/brightpath/adapt-api/internal/domain"
)

// Selection reason strings. These are part of the API contract: callers and
// tests match on them, and they document which strategy branch fired.
const (
	ReasonNoQuestions         = "No questions available"
	ReasonNoQuestionsFiltered = "No questions available after filtering"
	ReasonRandomFallback      = "Random selection (all skills above threshold or no skill match)"
)

// DefaultThreshold is the mastery level below which a skill is considered
// weak and targeted by the primary selection strategy.
const DefaultThreshold = 0.8

// Decision is the outcome of a single question selection. Question is nil
// when the pool was exhausted; Reason always explains which branch fired.
type Decision struct {
	Question *domain.Question
	Reason   string
}

// randomSource abstracts the randomness used for uniform choice and the
// final assessment shuffle, so tests can inject a seeded generator and
// assert over candidate sets instead of specific draws.
type randomSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// globalRand delegates to the math/rand package-level functions, which are
// safe for concurrent use.
type globalRand struct{}

func (globalRand) Intn(n int) int                     { return rand.Intn(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Selector chooses which question to serve next from a candidate pool, and
// builds balanced fixed-size sets for up-front assessments. It holds no
// mutable state beyond its randomness source and never modifies the caller's
// mastery map or question slice.
type Selector struct {
	rng randomSource
}

// NewSelector creates a Selector using the shared math/rand source.
func NewSelector() *Selector {
	return &Selector{rng: globalRand{}}
}

// NewSelectorWithRand creates a Selector using the given generator.
// Intended for tests; a *rand.Rand is not safe for concurrent use.
func NewSelectorWithRand(r *rand.Rand) *Selector {
	return &Selector{rng: r}
}

// SelectOption customizes a SelectNextQuestion call.
type SelectOption func(*selectOptions)

type selectOptions struct {
	threshold  float64
	excludeIDs map[string]struct{}
}

// WithThreshold overrides the weak-skill mastery threshold.
func WithThreshold(threshold float64) SelectOption {
	return func(o *selectOptions) {
		o.threshold = threshold
	}
}

// WithExcludedIDs removes the given question IDs from consideration,
// typically the questions already answered in the session.
func WithExcludedIDs(ids []string) SelectOption {
	return func(o *selectOptions) {
		if o.excludeIDs == nil {
			o.excludeIDs = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			o.excludeIDs[id] = struct{}{}
		}
	}
}

// SelectNextQuestion picks the single question to serve next.
//
// Strategies are layered: first target the weakest skill below the threshold
// with a difficulty matched to its mastery band, then balance exposure across
// skills, and finally fall back to a uniform random pick. The first branch
// that produces a question wins.
func (s *Selector) SelectNextQuestion(
	masteries map[string]float64,
	pool []*domain.Question,
	opts ...SelectOption,
) Decision {
	options := selectOptions{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&options)
	}

	if len(pool) == 0 {
		return Decision{Reason: ReasonNoQuestions}
	}

	candidates := pool
	if len(options.excludeIDs) > 0 {
		candidates = make([]*domain.Question, 0, len(pool))
		for _, q := range pool {
			if _, excluded := options.excludeIDs[q.ID]; !excluded {
				candidates = append(candidates, q)
			}
		}
		if len(candidates) == 0 {
			return Decision{Reason: ReasonNoQuestionsFiltered}
		}
	}

	// Strategy 1: target the weakest skill below the threshold.
	if target, mastery, ok := weakestSkill(masteries, options.threshold); ok {
		matching := filterBySkill(candidates, target)
		if len(matching) > 0 {
			preferred := filterByDifficulty(matching, preferredDifficulties(mastery))
			if len(preferred) > 0 {
				q := preferred[s.rng.Intn(len(preferred))]
				return Decision{
					Question: q,
					Reason: fmt.Sprintf(
						"Targeting weak skill: %s (mastery: %.2f) with %s difficulty",
						target, mastery, q.Difficulty),
				}
			}

			q := matching[s.rng.Intn(len(matching))]
			return Decision{
				Question: q,
				Reason:   fmt.Sprintf("Targeting weak skill: %s (mastery: %.2f)", target, mastery),
			}
		}
	}

	// Strategy 2: balance exposure across skills when several are present.
	groups := groupBySkill(candidates)
	if len(groups) > 1 && len(masteries) > 0 {
		if skill, mastery, ok := leastPracticedSkill(groups, masteries); ok {
			group := groups[skill]
			q := group[s.rng.Intn(len(group))]
			return Decision{
				Question: q,
				Reason:   fmt.Sprintf("Balancing skill exposure: %s (mastery: %.2f)", skill, mastery),
			}
		}
	}

	// Strategy 3: uniform random fallback.
	q := candidates[s.rng.Intn(len(candidates))]
	return Decision{Question: q, Reason: ReasonRandomFallback}
}

// SelectAssessmentQuestions builds a fixed-size, skill-balanced question set
// for an up-front diagnostic. Selection is deterministic (per-skill
// evenly-spaced difficulty sampling); only the final presentation order is
// shuffled. Returns an empty slice for an empty pool.
func (s *Selector) SelectAssessmentQuestions(pool []*domain.Question, count int) []*domain.Question {
	if len(pool) == 0 || count <= 0 {
		return []*domain.Question{}
	}

	if count > len(pool) {
		count = len(pool)
	}

	groups := groupBySkill(pool)
	skills := sortedSkills(groups)
	perSkill := max(1, count/len(groups))

	selected := make([]*domain.Question, 0, count)
	taken := make(map[string]struct{})
	for _, skill := range skills {
		group := sortByDifficulty(groups[skill])

		// Evenly-spaced sample over the difficulty-ordered group.
		step := max(1, len(group)/perSkill)
		picked := 0
		for i := 0; i < len(group) && picked < perSkill; i += step {
			selected = append(selected, group[i])
			taken[group[i].ID] = struct{}{}
			picked++
		}
	}

	// Fill any shortfall from the unused pool, easiest first.
	if len(selected) < count {
		remaining := make([]*domain.Question, 0, len(pool)-len(selected))
		for _, skill := range skills {
			for _, q := range groups[skill] {
				if _, ok := taken[q.ID]; !ok {
					remaining = append(remaining, q)
				}
			}
		}
		remaining = sortByDifficulty(remaining)
		for _, q := range remaining {
			if len(selected) >= count {
				break
			}
			selected = append(selected, q)
			taken[q.ID] = struct{}{}
		}
	}

	if len(selected) > count {
		selected = selected[:count]
	}

	s.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return selected
}

// weakestSkill returns the skill with the lowest mastery below the threshold.
// Ties are broken by lexicographically smallest skill ID so selection is
// reproducible across runs.
func weakestSkill(masteries map[string]float64, threshold float64) (string, float64, bool) {
	var (
		target string
		lowest float64
		found  bool
	)
	for skill, mastery := range masteries {
		if mastery >= threshold {
			continue
		}
		if !found || mastery < lowest || (mastery == lowest && skill < target) {
			target, lowest, found = skill, mastery, true
		}
	}
	return target, lowest, found
}

// leastPracticedSkill returns the skill with the lowest mastery among those
// present in both the candidate groups and the mastery map. Ties break
// lexicographically.
func leastPracticedSkill(
	groups map[string][]*domain.Question,
	masteries map[string]float64,
) (string, float64, bool) {
	var (
		target string
		lowest float64
		found  bool
	)
	for skill := range groups {
		mastery, tracked := masteries[skill]
		if !tracked {
			continue
		}
		if !found || mastery < lowest || (mastery == lowest && skill < target) {
			target, lowest, found = skill, mastery, true
		}
	}
	return target, lowest, found
}

// preferredDifficulties maps a mastery band to the difficulties worth serving:
// struggling learners get easier questions, learners approaching the
// threshold get harder ones.
func preferredDifficulties(mastery float64) []domain.Difficulty {
	switch {
	case mastery < 0.3:
		return []domain.Difficulty{domain.DifficultyVeryEasy, domain.DifficultyEasy}
	case mastery < 0.6:
		return []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium}
	default:
		return []domain.Difficulty{domain.DifficultyMedium, domain.DifficultyHard}
	}
}

func filterBySkill(pool []*domain.Question, skill string) []*domain.Question {
	matching := make([]*domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Skill == skill {
			matching = append(matching, q)
		}
	}
	return matching
}

func filterByDifficulty(pool []*domain.Question, difficulties []domain.Difficulty) []*domain.Question {
	allowed := make(map[domain.Difficulty]struct{}, len(difficulties))
	for _, d := range difficulties {
		allowed[d] = struct{}{}
	}

	matching := make([]*domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := allowed[q.Difficulty]; ok {
			matching = append(matching, q)
		}
	}
	return matching
}

func groupBySkill(pool []*domain.Question) map[string][]*domain.Question {
	groups := make(map[string][]*domain.Question)
	for _, q := range pool {
		groups[q.Skill] = append(groups[q.Skill], q)
	}
	return groups
}

func sortedSkills(groups map[string][]*domain.Question) []string {
	skills := make([]string, 0, len(groups))
	for skill := range groups {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// sortByDifficulty returns a copy of the slice ordered by ascending
// difficulty rank. The sort is stable so pool order is preserved within a
// difficulty level.
func sortByDifficulty(pool []*domain.Question) []*domain.Question {
	sorted := make([]*domain.Question, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Difficulty.Rank() < sorted[j].Difficulty.Rank()
	})
	return sorted
}
