package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// quizSchema mirrors the shape the quiz drafter asks for.
func quizSchema() *Schema {
	return &Schema{
		Name:        "quiz-question",
		Description: "One quiz question for a gap skill",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"skill_id":   map[string]any{"type": "string"},
				"text":       map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "integer", "minimum": 1},
				"level":      map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
			},
			"required": []any{"skill_id", "text"},
		},
	}
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "conforming output",
			raw:  `{"skill_id":"fractions","text":"Which equals 1/2?","difficulty":3,"level":"medium"}`,
		},
		{
			name: "optional fields omitted",
			raw:  `{"skill_id":"decimals","text":"Round 3.14 to one place."}`,
		},
		{
			name:    "missing required field",
			raw:     `{"text":"Which equals 1/2?"}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			raw:     `{"skill_id":"fractions","text":"?","difficulty":"three"}`,
			wantErr: true,
		},
		{
			name:    "enum violation",
			raw:     `{"skill_id":"fractions","text":"?","level":"expert"}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			raw:     `{not json}`,
			wantErr: true,
		},
		{
			name:    "empty output",
			raw:     ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSchema(quizSchema(), json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
		})
	}
}

func TestCheckSchema_NilSchemaAcceptsAnything(t *testing.T) {
	if err := checkSchema(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestCheckSchema_NestedDefinitions(t *testing.T) {
	schema := &Schema{
		Name:        "practice-exercise",
		Description: "A practice exercise with its answer key",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
				"answers": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"exercise", "answers"},
		},
	}

	valid := json.RawMessage(`{"exercise":{"title":"Fraction warm-up"},"answers":["1/2","2/4","3/6"]}`)
	if err := checkSchema(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"exercise":{"title":"Fraction warm-up"},"answers":[1,2]}`)
	if err := checkSchema(schema, invalid); err == nil {
		t.Fatal("expected error for wrong answer item type")
	}
}
