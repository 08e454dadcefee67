package lesson

import (
	"strings"
	"testing"
)

func TestParseValid(t *testing.T) {
	data := []byte(`{
		"title": "Introduction to Fractions",
		"subject": "Math",
		"grade_level": 4,
		"key_concepts": ["numerator", "denominator"],
		"learning_objectives": ["identify fractions"],
		"difficulty_level": "beginner"
	}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if s.Title != "Introduction to Fractions" {
		t.Errorf("Title = %q", s.Title)
	}
	if len(s.KeyConcepts) != 2 {
		t.Errorf("KeyConcepts count = %d, want 2", len(s.KeyConcepts))
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		wantErr string
	}{
		{
			name: "valid",
			summary: Summary{
				Title:       "Photosynthesis",
				KeyConcepts: []string{"chlorophyll"},
				Objectives:  []string{"explain the process"},
			},
		},
		{
			name: "empty title",
			summary: Summary{
				KeyConcepts: []string{"a"},
				Objectives:  []string{"b"},
			},
			wantErr: "title is empty",
		},
		{
			name: "no concepts",
			summary: Summary{
				Title:      "X",
				Objectives: []string{"b"},
			},
			wantErr: "no key concepts",
		},
		{
			name: "no objectives",
			summary: Summary{
				Title:       "X",
				KeyConcepts: []string{"a"},
			},
			wantErr: "no learning objectives",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.summary.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
