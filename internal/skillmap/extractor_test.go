package skillmap

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/llm"
)

func testSummary() lesson.Summary {
	return lesson.Summary{
		Title:       "Introduction to Fractions",
		Subject:     "Math",
		GradeLevel:  4,
		KeyConcepts: []string{"numerator", "denominator"},
		Objectives:  []string{"identify fractions"},
	}
}

func graphResponse(t *testing.T, skills []Skill) llm.MockResponse {
	t.Helper()
	content, err := json.Marshal(map[string]any{"skills": skills})
	if err != nil {
		t.Fatal(err)
	}
	return llm.MockResponse{Content: content}
}

func TestExtract(t *testing.T) {
	skills := []Skill{
		{ID: "numerator-denominator", Name: "Numerator and Denominator", Description: "Parts of a fraction", Difficulty: 2,
			SourceConcepts: []string{"numerator", "denominator"}},
		{ID: "identify-fractions", Name: "Identify Fractions", Description: "Recognize fractions in figures", Difficulty: 3,
			Prerequisites:  []string{"numerator-denominator"},
			SourceConcepts: []string{"identify fractions"}},
		{ID: "fraction-notation", Name: "Fraction Notation", Description: "Write fractions", Difficulty: 2,
			SourceConcepts: []string{"numerator"}},
	}

	mock := llm.NewMockProvider(graphResponse(t, skills))
	e := NewExtractor(mock, DefaultConfig())

	g, err := e.Extract(context.Background(), testSummary())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("graph has %d skills, want 3", g.Len())
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", mock.CallCount())
	}
}

func TestExtractEmptyOutputFails(t *testing.T) {
	mock := llm.NewMockProvider(graphResponse(t, nil))
	e := NewExtractor(mock, DefaultConfig())

	_, err := e.Extract(context.Background(), testSummary())
	if err == nil || !strings.Contains(err.Error(), "no skills") {
		t.Fatalf("error = %v, want no-skills failure", err)
	}
}

func TestExtractMalformedOutputFails(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"skills": "nope"}`)})
	e := NewExtractor(mock, DefaultConfig())

	if _, err := e.Extract(context.Background(), testSummary()); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func TestExtractUncoveredConceptFails(t *testing.T) {
	skills := []Skill{
		{ID: "a", Name: "Numerator Basics", Description: "Covers the numerator", Difficulty: 2, SourceConcepts: []string{"numerator"}},
		{ID: "b", Name: "Identify Fractions", Description: "Recognize fractions", Difficulty: 3, SourceConcepts: []string{"identify fractions"}},
		{ID: "c", Name: "Filler", Description: "Filler skill", Difficulty: 1, SourceConcepts: []string{"numerator"}},
	}

	mock := llm.NewMockProvider(graphResponse(t, skills))
	e := NewExtractor(mock, DefaultConfig())

	_, err := e.Extract(context.Background(), testSummary())
	if err == nil || !strings.Contains(err.Error(), "denominator") {
		t.Fatalf("error = %v, want coverage failure naming denominator", err)
	}
}

func TestExtractTooManySkillsFails(t *testing.T) {
	var skills []Skill
	for i := 0; i < 20; i++ {
		skills = append(skills, Skill{
			ID: "s" + string(rune('a'+i)), Name: "Skill", Difficulty: 1,
			SourceConcepts: []string{"numerator", "denominator", "identify fractions"},
		})
	}

	mock := llm.NewMockProvider(graphResponse(t, skills))
	e := NewExtractor(mock, DefaultConfig())

	_, err := e.Extract(context.Background(), testSummary())
	if err == nil || !strings.Contains(err.Error(), "want 3-15") {
		t.Fatalf("error = %v, want size bound failure", err)
	}
}
