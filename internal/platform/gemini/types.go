package gemini

import "github.com/brightpath/adapt-api/internal/domain"

// promptData represents the data passed to the prompt template
type promptData struct {
	Subject    string
	Skill      string
	Difficulty domain.Difficulty
	Count      int
}

// responseSchema represents the expected structure of the Gemini API response
type responseSchema struct {
	// Questions is the array of questions generated for the request
	Questions []questionSchema `json:"questions"`
}

// questionSchema represents a single question in the API response
type questionSchema struct {
	// Text is the question prompt shown to the learner
	Text string `json:"text"`

	// Options are the multiple-choice options, including the correct one
	Options []string `json:"options"`

	// CorrectAnswer must match one of the options exactly
	CorrectAnswer string `json:"correct_answer"`
}
