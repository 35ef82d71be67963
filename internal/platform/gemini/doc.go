// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It turns a subject/skill/difficulty request into a
// prompt, calls the API with retry and backoff, and parses the structured
// JSON response into domain questions.
package gemini
