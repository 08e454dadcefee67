package packplan

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/skillmap"
)

func testGraph(t *testing.T) *skillmap.Graph {
	t.Helper()
	g, err := skillmap.NewGraph([]skillmap.Skill{
		{ID: "equivalent-fractions", Name: "Equivalent Fractions", Difficulty: 4},
		{ID: "comparing-fractions", Name: "Comparing Fractions", Difficulty: 5, Prerequisites: []string{"equivalent-fractions"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func testProfile() grouping.GroupProfile {
	return grouping.GroupProfile{
		GroupID:      "group-1",
		Members:      []string{"s1", "s2"},
		MasteryLevel: grouping.LevelLow,
		WeakSkills:   []string{"equivalent-fractions"},
	}
}

func planResponse(t *testing.T, out map[string]any) llm.MockResponse {
	t.Helper()
	content, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	return llm.MockResponse{Content: content}
}

func TestPlan(t *testing.T) {
	mock := llm.NewMockProvider(planResponse(t, map[string]any{
		"focus_area": "Building intuition for equivalent fractions",
		"strategy":   "Start with fraction strips, then number lines.",
		"skill_gaps": []string{"equivalent-fractions"},
		"activities": []string{"fraction strips", "number line races", "pair checks"},
	}))
	p := NewPlanner(mock, DefaultConfig())

	plan, err := p.Plan(context.Background(), testProfile(), testGraph(t))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.GroupID != "group-1" {
		t.Errorf("GroupID = %q", plan.GroupID)
	}
	if len(plan.Activities) != 3 {
		t.Errorf("Activities = %v", plan.Activities)
	}
}

func TestPlanEmptyStrategyFails(t *testing.T) {
	mock := llm.NewMockProvider(planResponse(t, map[string]any{
		"focus_area": "equivalent-fractions review",
		"strategy":   "  ",
		"skill_gaps": []string{"equivalent-fractions"},
		"activities": []string{},
	}))
	p := NewPlanner(mock, DefaultConfig())

	_, err := p.Plan(context.Background(), testProfile(), testGraph(t))
	if err == nil || !strings.Contains(err.Error(), "empty strategy") {
		t.Fatalf("error = %v, want empty strategy failure", err)
	}
}

func TestPlanFocusMustReferenceGapSkill(t *testing.T) {
	mock := llm.NewMockProvider(planResponse(t, map[string]any{
		"focus_area": "General arithmetic fun",
		"strategy":   "Do worksheets.",
		"skill_gaps": []string{"equivalent-fractions"},
		"activities": []string{"worksheets"},
	}))
	p := NewPlanner(mock, DefaultConfig())

	_, err := p.Plan(context.Background(), testProfile(), testGraph(t))
	if err == nil || !strings.Contains(err.Error(), "references none of the gap skills") {
		t.Fatalf("error = %v, want focus-area contract failure", err)
	}
}

func TestPlanFocusMatchesSkillName(t *testing.T) {
	mock := llm.NewMockProvider(planResponse(t, map[string]any{
		"focus_area": "Mastering Equivalent Fractions",
		"strategy":   "Guided visual practice.",
		"skill_gaps": []string{"equivalent-fractions"},
		"activities": []string{"strips"},
	}))
	p := NewPlanner(mock, DefaultConfig())

	if _, err := p.Plan(context.Background(), testProfile(), testGraph(t)); err != nil {
		t.Fatalf("Plan returned error: %v (skill name in focus area should satisfy the contract)", err)
	}
}

func TestPlanFillsGapsFromProfileWhenOmitted(t *testing.T) {
	mock := llm.NewMockProvider(planResponse(t, map[string]any{
		"focus_area": "Equivalent Fractions",
		"strategy":   "Scaffolded practice.",
		"skill_gaps": []string{},
		"activities": []string{"strips"},
	}))
	p := NewPlanner(mock, DefaultConfig())

	plan, err := p.Plan(context.Background(), testProfile(), testGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.SkillGaps) != 1 || plan.SkillGaps[0] != "equivalent-fractions" {
		t.Fatalf("SkillGaps = %v, want profile weak skills", plan.SkillGaps)
	}
}
