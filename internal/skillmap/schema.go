package skillmap

import "github.com/teachkit/packgen/internal/llm"

// GraphSchema defines the JSON schema for skill graph extraction.
var GraphSchema = &llm.Schema{
	Name:        "skill-graph",
	Description: "Skills taught by a lesson, with prerequisite relationships",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skills": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short kebab-case identifier, e.g. \"equivalent-fractions\"",
						},
						"name": map[string]any{
							"type":        "string",
							"description": "Human-readable skill name (3-6 words)",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "One-sentence description of what the skill covers",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     10,
							"description": "Difficulty on a 1-10 scale relative to the grade level",
						},
						"prerequisites": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "IDs of skills from this list that must be learned first",
						},
						"source_concepts": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "The lesson key concepts and objectives this skill covers, verbatim",
						},
					},
					"required":             []any{"id", "name", "description", "difficulty", "prerequisites", "source_concepts"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"skills"},
		"additionalProperties": false,
	},
}
