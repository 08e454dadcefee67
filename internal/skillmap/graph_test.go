package skillmap

import (
	"encoding/json"
	"strings"
	"testing"
)

func testSkills() []Skill {
	return []Skill{
		{ID: "fractions-intro", Name: "Fraction Basics", Difficulty: 2},
		{ID: "equivalent-fractions", Name: "Equivalent Fractions", Difficulty: 4, Prerequisites: []string{"fractions-intro"}},
		{ID: "comparing-fractions", Name: "Comparing Fractions", Difficulty: 5, Prerequisites: []string{"equivalent-fractions"}},
		{ID: "number-line", Name: "Fractions on a Number Line", Difficulty: 3, Prerequisites: []string{"fractions-intro"}},
	}
}

func TestNewGraphBuildsTopologicalOrder(t *testing.T) {
	g, err := NewGraph(testSkills())
	if err != nil {
		t.Fatalf("NewGraph returned error: %v", err)
	}

	order := g.TopologicalOrder()
	if len(order) != 4 {
		t.Fatalf("topo order has %d skills, want 4", len(order))
	}

	// Every skill must come after all its prerequisites.
	for _, s := range order {
		for _, prereq := range s.Prerequisites {
			if g.TopoIndex(prereq) >= g.TopoIndex(s.ID) {
				t.Errorf("skill %q appears before its prerequisite %q", s.ID, prereq)
			}
		}
	}
}

func TestTopologicalOrderDeterministic(t *testing.T) {
	g1, err := NewGraph(testSkills())
	if err != nil {
		t.Fatal(err)
	}
	g2, err := NewGraph(testSkills())
	if err != nil {
		t.Fatal(err)
	}

	o1 := g1.TopologicalOrder()
	o2 := g2.TopologicalOrder()
	for i := range o1 {
		if o1[i].ID != o2[i].ID {
			t.Fatalf("order differs at %d: %q vs %q", i, o1[i].ID, o2[i].ID)
		}
	}
}

func TestDependentsAndPrerequisites(t *testing.T) {
	g, err := NewGraph(testSkills())
	if err != nil {
		t.Fatal(err)
	}

	deps := g.Dependents("fractions-intro")
	if len(deps) != 2 {
		t.Fatalf("fractions-intro has %d dependents, want 2", len(deps))
	}

	prereqs := g.Prerequisites("comparing-fractions")
	if len(prereqs) != 1 || prereqs[0].ID != "equivalent-fractions" {
		t.Fatalf("unexpected prerequisites: %v", prereqs)
	}
}

func TestNewGraphValidation(t *testing.T) {
	tests := []struct {
		name    string
		skills  []Skill
		wantErr string
	}{
		{
			name:    "empty",
			skills:  nil,
			wantErr: "no skills",
		},
		{
			name: "duplicate ID",
			skills: []Skill{
				{ID: "a", Name: "A", Difficulty: 1},
				{ID: "a", Name: "A again", Difficulty: 2},
			},
			wantErr: "duplicate skill ID",
		},
		{
			name: "dangling prerequisite",
			skills: []Skill{
				{ID: "a", Name: "A", Difficulty: 1, Prerequisites: []string{"ghost"}},
			},
			wantErr: "nonexistent prerequisite",
		},
		{
			name: "cycle",
			skills: []Skill{
				{ID: "a", Name: "A", Difficulty: 1, Prerequisites: []string{"b"}},
				{ID: "b", Name: "B", Difficulty: 1, Prerequisites: []string{"a"}},
			},
			wantErr: "cycle detected",
		},
		{
			name: "difficulty out of range",
			skills: []Skill{
				{ID: "a", Name: "A", Difficulty: 11},
			},
			wantErr: "difficulty must be in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.skills)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g, err := NewGraph(testSkills())
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Len() != g.Len() {
		t.Fatalf("decoded %d skills, want %d", decoded.Len(), g.Len())
	}
	if decoded.TopoIndex("comparing-fractions") != g.TopoIndex("comparing-fractions") {
		t.Error("topo index not rebuilt after decode")
	}
}
