package bkt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brightpath/adapt-api/internal/domain"
)

// Mastery bands used when bucketing skills after an assessment.
const (
	strengthFloor = 0.75
	weaknessCeil  = 0.4
)

// AnswerRecord is one graded answer fed into assessment analysis.
type AnswerRecord struct {
	QuestionID string
	IsCorrect  bool
}

// ScoreSummary is the raw correct/total score of an assessment.
type ScoreSummary struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// SkillBuckets groups assessed skills by how well the learner did.
type SkillBuckets struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	NeedsPractice []string `json:"needs_practice"`
}

// DifficultyPerformance is the per-difficulty correct/total breakdown.
type DifficultyPerformance struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// AssessmentAnalysis is the full post-assessment report.
type AssessmentAnalysis struct {
	Score          ScoreSummary                                `json:"score"`
	Skills         SkillBuckets                                `json:"skill_analysis"`
	ByDifficulty   map[domain.Difficulty]DifficultyPerformance `json:"difficulty_analysis"`
	OverallMastery float64                                     `json:"overall_mastery"`
}

// Recommendation is one suggested learning module, prioritized by how weak
// the underlying skill is.
type Recommendation struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"type"` // "remedial", "practice" or "advanced"
	Skill       string  `json:"skill"`
	Mastery     float64 `json:"mastery"`
	Priority    string  `json:"priority"` // "high", "medium" or "low"
	Description string  `json:"description"`
}

// AnalyzeAssessment summarizes a finished assessment: overall score, skill
// buckets (strength >= 0.75, weakness <= 0.4, needs-practice between), and
// performance broken down by question difficulty.
func AnalyzeAssessment(
	masteries map[string]float64,
	answers []AnswerRecord,
	questions map[string]*domain.Question,
) AssessmentAnalysis {
	analysis := AssessmentAnalysis{
		ByDifficulty: make(map[domain.Difficulty]DifficultyPerformance, 4),
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	analysis.Score = ScoreSummary{
		Correct: correct,
		Total:   len(answers),
	}
	if len(answers) > 0 {
		analysis.Score.Percentage = float64(correct) / float64(len(answers)) * 100
	}

	for _, skill := range sortedSkillNames(masteries) {
		mastery := masteries[skill]
		switch {
		case mastery >= strengthFloor:
			analysis.Skills.Strengths = append(analysis.Skills.Strengths, skill)
		case mastery <= weaknessCeil:
			analysis.Skills.Weaknesses = append(analysis.Skills.Weaknesses, skill)
		default:
			analysis.Skills.NeedsPractice = append(analysis.Skills.NeedsPractice, skill)
		}
	}

	for _, d := range []domain.Difficulty{
		domain.DifficultyVeryEasy,
		domain.DifficultyEasy,
		domain.DifficultyMedium,
		domain.DifficultyHard,
	} {
		analysis.ByDifficulty[d] = DifficultyPerformance{}
	}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		difficulty := q.Difficulty
		if !difficulty.IsValid() {
			difficulty = domain.DifficultyMedium
		}
		perf := analysis.ByDifficulty[difficulty]
		perf.Total++
		if a.IsCorrect {
			perf.Correct++
		}
		analysis.ByDifficulty[difficulty] = perf
	}
	for d, perf := range analysis.ByDifficulty {
		if perf.Total > 0 {
			perf.Percentage = float64(perf.Correct) / float64(perf.Total) * 100
			analysis.ByDifficulty[d] = perf
		}
	}

	if len(masteries) > 0 {
		sum := 0.0
		for _, m := range masteries {
			sum += m
		}
		analysis.OverallMastery = sum / float64(len(masteries))
	}

	return analysis
}

// GenerateRecommendations produces a learning-module recommendation per
// assessed skill, weakest first. Skills below 0.4 get remedial content,
// skills below 0.7 get targeted practice, the rest get advanced material.
func GenerateRecommendations(masteries map[string]float64, subject string) []Recommendation {
	skills := sortedSkillNames(masteries)
	sort.SliceStable(skills, func(i, j int) bool {
		return masteries[skills[i]] < masteries[skills[j]]
	})

	recommendations := make([]Recommendation, 0, len(skills))
	for _, skill := range skills {
		mastery := masteries[skill]
		display := strings.ReplaceAll(skill, "_", " ")

		var rec Recommendation
		switch {
		case mastery < 0.4:
			rec = Recommendation{
				ID:          fmt.Sprintf("%s_remedial_%s", subject, skill),
				Title:       fmt.Sprintf("Building foundations in %s", display),
				Type:        "remedial",
				Priority:    "high",
				Description: fmt.Sprintf("Focus on fundamentals of %s to build a solid foundation", display),
			}
		case mastery < 0.7:
			rec = Recommendation{
				ID:          fmt.Sprintf("%s_practice_%s", subject, skill),
				Title:       fmt.Sprintf("Practicing %s", display),
				Type:        "practice",
				Priority:    "medium",
				Description: fmt.Sprintf("Reinforce your understanding of %s through targeted practice", display),
			}
		default:
			rec = Recommendation{
				ID:          fmt.Sprintf("%s_advanced_%s", subject, skill),
				Title:       fmt.Sprintf("Advanced %s", display),
				Type:        "advanced",
				Priority:    "low",
				Description: fmt.Sprintf("Deepen your expertise in %s with advanced concepts", display),
			}
		}
		rec.Skill = skill
		rec.Mastery = mastery
		recommendations = append(recommendations, rec)
	}

	return recommendations
}

func sortedSkillNames(masteries map[string]float64) []string {
	skills := make([]string, 0, len(masteries))
	for skill := range masteries {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}
