package diagnostic

import "github.com/teachkit/packgen/internal/llm"

// DiagnosticSchema defines the JSON schema for diagnostic generation.
var DiagnosticSchema = &llm.Schema{
	Name:        "diagnostic",
	Description: "A diagnostic assessment covering a set of skills",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"instructions": map[string]any{
				"type":        "string",
				"description": "Short instructions shown to students before the assessment",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short identifier, e.g. \"q1\"",
						},
						"skill_id": map[string]any{
							"type":        "string",
							"description": "ID of the skill this question assesses, from the given list",
						},
						"text": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"answer_key": map[string]any{
							"type":        "string",
							"description": "The correct answer",
						},
						"difficulty": map[string]any{
							"type":    "integer",
							"minimum": 1,
							"maximum": 10,
						},
						"time_estimate_mins": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"description": "Minutes a typical student needs for this question",
						},
					},
					"required":             []any{"id", "skill_id", "text", "answer_key", "difficulty", "time_estimate_mins"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"instructions", "questions"},
		"additionalProperties": false,
	},
}
