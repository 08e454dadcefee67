package roster

import (
	"strings"
	"testing"
)

func TestParseCSVSniffsColumns(t *testing.T) {
	csv := `student_id,Name,fractions,decimals
s1,Ada,0.9,0.8
s2,Ben,0.4,0.5
s3,Cam,0.2,
`
	students, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("parsed %d students, want 3", len(students))
	}

	if students[0].ID != "s1" || students[0].Name != "Ada" {
		t.Errorf("first record = %+v", students[0])
	}
	if students[0].Scores["fractions"] != 0.9 {
		t.Errorf("fractions score = %v, want 0.9", students[0].Scores["fractions"])
	}
	if _, ok := students[2].Scores["decimals"]; ok {
		t.Error("empty score cell should be omitted")
	}
}

func TestParseCSVNoIdentityColumn(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error for CSV without id or name column")
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"id": "s1", "name": "Ada", "scores": {"fractions": 0.7}},
		{"id": "s2", "name": "Ben"}
	]`)
	students, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON returned error: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("parsed %d students, want 2", len(students))
	}
	if !HasScores(students) {
		t.Error("HasScores = false, want true")
	}
}

func TestParseJSONMissingID(t *testing.T) {
	if _, err := ParseJSON([]byte(`[{"name": "Ada"}]`)); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	skills := []string{"a", "b", "c"}

	r1 := Synthetic(10, skills, 42)
	r2 := Synthetic(10, skills, 42)

	if len(r1) != 10 {
		t.Fatalf("roster size = %d, want 10", len(r1))
	}
	for i := range r1 {
		for _, id := range skills {
			if r1[i].Scores[id] != r2[i].Scores[id] {
				t.Fatalf("student %d skill %s differs across identical seeds", i, id)
			}
		}
	}
}

func TestSyntheticScoresInRange(t *testing.T) {
	for _, s := range Synthetic(30, []string{"x", "y"}, 7) {
		for id, v := range s.Scores {
			if v < 0 || v > 1 {
				t.Fatalf("student %s skill %s score %v out of [0,1]", s.ID, id, v)
			}
		}
	}
}
