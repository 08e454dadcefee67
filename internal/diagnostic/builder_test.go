package diagnostic

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/skillmap"
)

func testGraph(t *testing.T) *skillmap.Graph {
	t.Helper()
	g, err := skillmap.NewGraph([]skillmap.Skill{
		{ID: "place-value", Name: "Place Value", Difficulty: 2},
		{ID: "rounding", Name: "Rounding", Difficulty: 4, Prerequisites: []string{"place-value"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func diagResponse(t *testing.T, instructions string, questions []Question) llm.MockResponse {
	t.Helper()
	content, err := json.Marshal(map[string]any{
		"instructions": instructions,
		"questions":    questions,
	})
	if err != nil {
		t.Fatal(err)
	}
	return llm.MockResponse{Content: content}
}

func TestBuildComputesTotalTime(t *testing.T) {
	questions := []Question{
		{ID: "q1", SkillID: "place-value", Text: "What digit is in the tens place of 374?", AnswerKey: "7", Difficulty: 2, TimeEstimate: 2},
		{ID: "q2", SkillID: "rounding", Text: "Round 374 to the nearest ten.", AnswerKey: "370", Difficulty: 4, TimeEstimate: 3},
	}

	mock := llm.NewMockProvider(diagResponse(t, "Answer every question.", questions))
	b := NewBuilder(mock, DefaultConfig(), nil)

	d, err := b.Build(context.Background(), testGraph(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if d.TotalTime != 5 {
		t.Errorf("TotalTime = %d, want 5 (sum of estimates)", d.TotalTime)
	}
	if len(d.UncoveredSkills) != 0 {
		t.Errorf("UncoveredSkills = %v, want none", d.UncoveredSkills)
	}
}

func TestBuildDropsUnknownSkillQuestions(t *testing.T) {
	questions := []Question{
		{ID: "q1", SkillID: "place-value", Text: "t", AnswerKey: "a", Difficulty: 2, TimeEstimate: 2},
		{ID: "q2", SkillID: "ghost-skill", Text: "t", AnswerKey: "a", Difficulty: 2, TimeEstimate: 9},
	}

	mock := llm.NewMockProvider(diagResponse(t, "", questions))
	b := NewBuilder(mock, DefaultConfig(), nil)

	d, err := b.Build(context.Background(), testGraph(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(d.Questions) != 1 {
		t.Fatalf("kept %d questions, want 1", len(d.Questions))
	}
	if d.TotalTime != 2 {
		t.Errorf("TotalTime = %d, want 2 (dropped question excluded)", d.TotalTime)
	}
}

func TestBuildRecordsUncoveredSkills(t *testing.T) {
	questions := []Question{
		{ID: "q1", SkillID: "place-value", Text: "t", AnswerKey: "a", Difficulty: 2, TimeEstimate: 2},
	}

	mock := llm.NewMockProvider(diagResponse(t, "", questions))
	b := NewBuilder(mock, DefaultConfig(), nil)

	d, err := b.Build(context.Background(), testGraph(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(d.UncoveredSkills) != 1 || d.UncoveredSkills[0] != "rounding" {
		t.Fatalf("UncoveredSkills = %v, want [rounding]", d.UncoveredSkills)
	}
}

func TestBuildNoUsableQuestionsFails(t *testing.T) {
	questions := []Question{
		{ID: "q1", SkillID: "ghost", Text: "t", AnswerKey: "a", Difficulty: 1, TimeEstimate: 1},
	}

	mock := llm.NewMockProvider(diagResponse(t, "", questions))
	b := NewBuilder(mock, DefaultConfig(), nil)

	if _, err := b.Build(context.Background(), testGraph(t)); err == nil {
		t.Fatal("expected error when no usable questions remain")
	}
}
