package drafter

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/skillmap"
)

func testInput(t *testing.T) Input {
	t.Helper()
	g, err := skillmap.NewGraph([]skillmap.Skill{
		{ID: "equivalent-fractions", Name: "Equivalent Fractions", Difficulty: 4},
		{ID: "comparing-fractions", Name: "Comparing Fractions", Difficulty: 5, Prerequisites: []string{"equivalent-fractions"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return Input{
		Plan: &packplan.PackPlan{
			GroupID:   "group-1",
			FocusArea: "Equivalent Fractions",
			Strategy:  "Visual first.",
			SkillGaps: []string{"equivalent-fractions"},
		},
		Graph: g,
		Profile: grouping.GroupProfile{
			GroupID:       "group-1",
			MasteryLevel:  grouping.LevelLow,
			LearningStyle: "visual",
		},
	}
}

func mockJSON(t *testing.T, v any) llm.MockResponse {
	t.Helper()
	content, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return llm.MockResponse{Content: content}
}

func validQuestion(id string) pack.QuizQuestion {
	return pack.QuizQuestion{
		ID:            id,
		SkillID:       "equivalent-fractions",
		Text:          "Which fraction equals 1/2?",
		Options:       []string{"2/4", "1/3", "3/5"},
		CorrectAnswer: "2/4",
		Difficulty:    3,
		Hint:          "Multiply top and bottom by the same number.",
		Explanation:   "1/2 = 2/4.",
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("pdf"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestQuizDraft(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(t, map[string]any{
		"questions": []pack.QuizQuestion{validQuestion("q1"), validQuestion("q2")},
	}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	if err := reg.Draft(context.Background(), KindQuiz, testInput(t), &p); err != nil {
		t.Fatalf("Draft returned error: %v", err)
	}
	if len(p.Quiz) != 2 {
		t.Fatalf("quiz has %d questions, want 2", len(p.Quiz))
	}
}

func TestQuizDraftRejectsAmbiguousCorrectAnswer(t *testing.T) {
	q := validQuestion("q1")
	q.Options = []string{"2/4", "2/4", "1/3"}

	mock := llm.NewMockProvider(mockJSON(t, map[string]any{"questions": []pack.QuizQuestion{q}}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	err := reg.Draft(context.Background(), KindQuiz, testInput(t), &p)
	if err == nil || !strings.Contains(err.Error(), "want exactly 1") {
		t.Fatalf("error = %v, want exactly-one-correct failure", err)
	}
}

func TestQuizDraftRejectsMissingCorrectAnswer(t *testing.T) {
	q := validQuestion("q1")
	q.CorrectAnswer = "7/8"

	mock := llm.NewMockProvider(mockJSON(t, map[string]any{"questions": []pack.QuizQuestion{q}}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	if err := reg.Draft(context.Background(), KindQuiz, testInput(t), &p); err == nil {
		t.Fatal("expected error when no option equals the correct answer")
	}
}

func TestQuizDraftRejectsUnknownSkill(t *testing.T) {
	q := validQuestion("q1")
	q.SkillID = "long-division"

	mock := llm.NewMockProvider(mockJSON(t, map[string]any{"questions": []pack.QuizQuestion{q}}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	err := reg.Draft(context.Background(), KindQuiz, testInput(t), &p)
	if err == nil || !strings.Contains(err.Error(), "unknown skill") {
		t.Fatalf("error = %v, want unknown-skill failure", err)
	}
}

func TestSlidesDraft(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(t, map[string]any{
		"slides": []pack.Slide{
			{Title: "What You Will Learn", Body: "Equivalent fractions."},
			{Title: "Equivalent Fractions", Body: "Two fractions are equivalent when..."},
		},
	}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	if err := reg.Draft(context.Background(), KindSlides, testInput(t), &p); err != nil {
		t.Fatalf("Draft returned error: %v", err)
	}
	if len(p.Slides) != 2 {
		t.Fatalf("deck has %d slides, want 2", len(p.Slides))
	}
}

func TestPracticeDraftAnswerKeyLengthMismatch(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(t, map[string]any{
		"exercises": []pack.Exercise{{
			ID: "ex1", SkillID: "equivalent-fractions", Title: "Match",
			Instructions: "Fill in.", Problems: []string{"1/2 = ?/4", "1/3 = ?/9"},
			AnswerKey: []string{"2"},
		}},
	}))
	reg := NewRegistry(mock, DefaultConfig())

	var p pack.TeachingPack
	err := reg.Draft(context.Background(), KindPractice, testInput(t), &p)
	if err == nil || !strings.Contains(err.Error(), "answers for") {
		t.Fatalf("error = %v, want answer key length failure", err)
	}
}

// TestSingleAssetRedraftLeavesOthersUntouched is the idempotency property:
// re-invoking one drafter must not change the pack's other asset fields.
func TestSingleAssetRedraftLeavesOthersUntouched(t *testing.T) {
	in := testInput(t)

	p := pack.TeachingPack{
		GroupID:  "group-1",
		Slides:   []pack.Slide{{Title: "Keep", Body: "me"}},
		Quiz:     []pack.QuizQuestion{validQuestion("q1")},
		Practice: []pack.Exercise{{ID: "ex1", Problems: []string{"p"}, AnswerKey: []string{"a"}}},
	}
	before := p

	mock := llm.NewMockProvider(mockJSON(t, map[string]any{
		"title":              "Fractions in Two Minutes",
		"narration":          strings.Repeat("Fractions are parts of a whole. ", 10),
		"visual_description": "Scene 1: a pizza cut in halves.",
	}))
	reg := NewRegistry(mock, DefaultConfig())

	if err := reg.Draft(context.Background(), KindVideo, in, &p); err != nil {
		t.Fatalf("Draft returned error: %v", err)
	}

	if p.Video == nil {
		t.Fatal("video not attached")
	}
	if !reflect.DeepEqual(before.Slides, p.Slides) {
		t.Error("slides changed by video draft")
	}
	if !reflect.DeepEqual(before.Quiz, p.Quiz) {
		t.Error("quiz changed by video draft")
	}
	if !reflect.DeepEqual(before.Practice, p.Practice) {
		t.Error("practice changed by video draft")
	}
}

func TestRegistryUnknownKind(t *testing.T) {
	reg := NewRegistry(llm.NewMockProvider(), DefaultConfig())
	var p pack.TeachingPack
	if err := reg.Draft(context.Background(), Kind("pdf"), testInput(t), &p); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}
