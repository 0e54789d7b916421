package questiongen

import "github.com/abhisek/studyloop/internal/llm"

// questionListSchema is what a well-behaved source returns. It is checked
// by the strict parsing tier only; the relaxed tier accepts looser shapes.
var questionListSchema = &llm.Schema{
	Name:        "question-list",
	Description: "A list of multiple-choice practice questions",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question text",
				},
				"options": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"correctAnswer": map[string]any{
					"type":        "string",
					"description": "Text of the correct option",
				},
				"explanation": map[string]any{
					"type": "string",
				},
			},
			"required": []any{"question", "correctAnswer"},
		},
	},
}
