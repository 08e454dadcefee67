package grouping

import (
	"fmt"
	"testing"

	"github.com/teachkit/packgen/internal/roster"
	"github.com/teachkit/packgen/internal/skillmap"
)

func testGraph(t *testing.T) *skillmap.Graph {
	t.Helper()
	g, err := skillmap.NewGraph([]skillmap.Skill{
		{ID: "a", Name: "Skill A", Difficulty: 2},
		{ID: "b", Name: "Skill B", Difficulty: 5, Prerequisites: []string{"a"}},
		{ID: "c", Name: "Skill C", Difficulty: 8, Prerequisites: []string{"b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func scoredRoster(m int) []roster.StudentRecord {
	students := make([]roster.StudentRecord, m)
	for i := range students {
		v := float64(i) / float64(m)
		students[i] = roster.StudentRecord{
			ID:     fmt.Sprintf("s%02d", i),
			Scores: map[string]float64{"a": v, "b": v, "c": v},
		}
	}
	return students
}

func unscoredRoster(m int) []roster.StudentRecord {
	students := make([]roster.StudentRecord, m)
	for i := range students {
		students[i] = roster.StudentRecord{ID: fmt.Sprintf("s%02d", i)}
	}
	return students
}

// checkPartition asserts the partition property: every student appears in
// exactly one group and no group is empty.
func checkPartition(t *testing.T, students []roster.StudentRecord, groups []GroupProfile) {
	t.Helper()

	seen := make(map[string]int)
	for _, g := range groups {
		if len(g.Members) == 0 {
			t.Errorf("group %s is empty", g.GroupID)
		}
		for _, id := range g.Members {
			seen[id]++
		}
	}
	for _, s := range students {
		if seen[s.ID] != 1 {
			t.Errorf("student %s appears %d times, want exactly 1", s.ID, seen[s.ID])
		}
	}
	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	if total != len(students) {
		t.Errorf("partition covers %d students, roster has %d", total, len(students))
	}
}

func TestPartitionWithScores(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)
	students := scoredRoster(30)

	groups, degraded, err := p.Partition(students, testGraph(t), 3)
	if err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if degraded {
		t.Error("degraded = true, want false")
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	checkPartition(t, students, groups)

	for _, g := range groups {
		if len(g.Members) != 10 {
			t.Errorf("group %s has %d members, want 10", g.GroupID, len(g.Members))
		}
	}

	// Bands are contiguous by mastery: aggregates ascend with group index.
	for i := 1; i < len(groups); i++ {
		if groups[i].AggregateScore < groups[i-1].AggregateScore {
			t.Errorf("group %d aggregate %.2f below group %d aggregate %.2f",
				i, groups[i].AggregateScore, i-1, groups[i-1].AggregateScore)
		}
	}
}

func TestPartitionRemainderGoesToLowestGroups(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)
	students := scoredRoster(11)

	groups, _, err := p.Partition(students, testGraph(t), 3)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, students, groups)

	sizes := []int{len(groups[0].Members), len(groups[1].Members), len(groups[2].Members)}
	want := []int{4, 4, 3}
	for i := range sizes {
		if sizes[i] != want[i] {
			t.Errorf("group %d size = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestPartitionDegradesWhenFewerStudentsThanGroups(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)
	students := scoredRoster(2)

	groups, degraded, err := p.Partition(students, testGraph(t), 5)
	if err != nil {
		t.Fatalf("Partition returned error: %v", err)
	}
	if !degraded {
		t.Error("degraded = false, want true")
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	checkPartition(t, students, groups)
}

func TestPartitionWithoutScoresRoundRobin(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)
	students := unscoredRoster(9)

	groups, _, err := p.Partition(students, testGraph(t), 3)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, students, groups)

	// Synthesized profiles must differentiate: levels spread low to high.
	if groups[0].MasteryLevel != LevelLow {
		t.Errorf("first group level = %s, want low", groups[0].MasteryLevel)
	}
	if groups[2].MasteryLevel != LevelHigh {
		t.Errorf("last group level = %s, want high", groups[2].MasteryLevel)
	}
	for _, g := range groups {
		if len(g.WeakSkills) == 0 {
			t.Errorf("group %s has no synthesized weak skills", g.GroupID)
		}
	}
}

func TestPartitionErrors(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)

	if _, _, err := p.Partition(nil, testGraph(t), 3); err == nil {
		t.Error("expected error for empty roster")
	}
	if _, _, err := p.Partition(scoredRoster(5), testGraph(t), 0); err == nil {
		t.Error("expected error for zero group count")
	}
}

func TestLevelFor(t *testing.T) {
	cuts := DefaultCuts()
	tests := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelLow},
		{0.39, LevelLow},
		{0.40, LevelMedium},
		{0.69, LevelMedium},
		{0.70, LevelHigh},
		{1.0, LevelHigh},
	}
	for _, tt := range tests {
		if got := cuts.LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestWeakSkillsWorstFirst(t *testing.T) {
	p := NewProfiler(DefaultConfig(), nil)
	students := []roster.StudentRecord{
		{ID: "s1", Scores: map[string]float64{"a": 0.9, "b": 0.3, "c": 0.1}},
		{ID: "s2", Scores: map[string]float64{"a": 0.8, "b": 0.4, "c": 0.2}},
	}

	groups, _, err := p.Partition(students, testGraph(t), 1)
	if err != nil {
		t.Fatal(err)
	}
	weak := groups[0].WeakSkills
	if len(weak) != 2 || weak[0] != "c" || weak[1] != "b" {
		t.Fatalf("WeakSkills = %v, want [c b]", weak)
	}
}
