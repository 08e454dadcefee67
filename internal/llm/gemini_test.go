package llm

import (
	"testing"
)

func TestGeminiSchemaTranslation(t *testing.T) {
	// The shape the quiz drafter requests: questions with options and
	// a constrained difficulty.
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"skill_id":   map[string]any{"type": "string"},
						"text":       map[string]any{"type": "string"},
						"difficulty": map[string]any{"type": "integer"},
						"level":      map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"skill_id", "text"},
				},
			},
		},
		"required": []any{"questions"},
	}

	schema := geminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT at the root, got %s", schema.Type)
	}
	questions := schema.Properties["questions"]
	if questions == nil || questions.Type != "ARRAY" {
		t.Fatalf("expected ARRAY questions property, got %+v", questions)
	}

	item := questions.Items
	if item == nil || item.Type != "OBJECT" {
		t.Fatalf("expected OBJECT question items, got %+v", item)
	}
	if item.Properties["skill_id"].Type != "STRING" {
		t.Fatalf("expected STRING skill_id, got %s", item.Properties["skill_id"].Type)
	}
	if item.Properties["difficulty"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER difficulty, got %s", item.Properties["difficulty"].Type)
	}
	if len(item.Properties["level"].Enum) != 3 {
		t.Fatalf("expected 3 level enum values, got %d", len(item.Properties["level"].Enum))
	}
	if item.Properties["options"].Items.Type != "STRING" {
		t.Fatalf("expected STRING option items, got %s", item.Properties["options"].Items.Type)
	}
	if len(item.Required) != 2 {
		t.Fatalf("expected 2 required question fields, got %d", len(item.Required))
	}
	if len(schema.Required) != 1 || schema.Required[0] != "questions" {
		t.Fatalf("unexpected root required list: %v", schema.Required)
	}
}

func TestGeminiTypeFallback(t *testing.T) {
	if got := geminiType("null"); got != "STRING" {
		t.Fatalf("expected STRING fallback for unknown type, got %s", got)
	}
}
