package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/errexplain/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior software engineer who explains error messages. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- explanation: plain language, at most 500 characters.
- causes: 3 to 5 short strings.
- solutions: 3 to 5 objects with title, description and an optional code snippet.
- category: exactly one of ` + joinCategories() + `.
- severity: exactly one of ` + joinSeverities() + ` (lowercase).
- exampleCode: a minimal reproducible snippet that triggers the error, or "".

Schema (example with empty values):
{
  "explanation": "<string>",
  "causes": ["<string>"],
  "solutions": [
    {
      "title": "<string>",
      "description": "<string>",
      "code": "<string>"
    }
  ],
  "category": "<category>",
  "severity": "<severity>",
  "exampleCode": "<string>"
}`
}

// GetUserPrompt wraps the error text the user submitted.
func GetUserPrompt(errorMessage, language string) string {
	if strings.TrimSpace(language) == "" {
		language = "Other"
	}
	return fmt.Sprintf("Analyze this %s error and respond with the JSON per schema.\n\nError:\n%s", language, errorMessage)
}

// BuildAnalysisPrompt is the single prompt sent to the completion service.
func BuildAnalysisPrompt(errorMessage, language string) string {
	return GetSystemPrompt() + "\n\n" + GetUserPrompt(errorMessage, language)
}

func joinCategories() string {
	parts := make([]string, 0, len(analysis.Categories))
	for _, c := range analysis.Categories {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ", ")
}

func joinSeverities() string {
	parts := make([]string, 0, len(analysis.Severities))
	for _, s := range analysis.Severities {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
