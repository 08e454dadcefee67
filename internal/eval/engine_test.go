package eval

import (
	"math"
	"testing"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/skillmap"
)

func testGraph(t *testing.T) *skillmap.Graph {
	t.Helper()
	g, err := skillmap.NewGraph([]skillmap.Skill{
		{ID: "basics", Name: "Fraction Basics", Difficulty: 2},
		{ID: "equivalence", Name: "Equivalent Fractions", Difficulty: 4, Prerequisites: []string{"basics"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func testTruth() GroundTruth {
	return GroundTruth{
		KeyConcepts: []string{"fraction basics", "equivalent fractions"},
		Skills:      []string{"equivalence"},
		ExpectedAnswers: map[string]string{
			"equivalent fractions": "2/4",
		},
	}
}

func goodPack() pack.TeachingPack {
	return pack.TeachingPack{
		GroupID: "group-1",
		Slides: []pack.Slide{
			{Title: "Fraction Basics", Body: "A fraction names part of a whole."},
			{Title: "Equivalent Fractions", Body: "1/2 and 2/4 are equivalent fractions. Equivalence is shown on a number line."},
			{Title: "Practice Together", Body: "We try fraction basics and equivalence examples."},
			{Title: "Summary", Body: "Today we learned fraction basics and equivalent fractions."},
		},
		Quiz: []pack.QuizQuestion{
			{ID: "q1", SkillID: "basics", Text: "What is a fraction basics question?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{ID: "q2", SkillID: "equivalence", Text: "Which equals 1/2? (equivalent fractions)", Options: []string{"2/4", "1/3"}, CorrectAnswer: "2/4"},
			{ID: "q3", SkillID: "equivalence", Text: "More equivalence", Options: []string{"x", "y"}, CorrectAnswer: "x"},
		},
	}
}

func testProfiles() []grouping.GroupProfile {
	return []grouping.GroupProfile{
		{GroupID: "group-1", MasteryLevel: grouping.LevelMedium},
	}
}

func TestEvaluateBoundsAndWeights(t *testing.T) {
	rec, err := Evaluate(Input{
		Packs:    []pack.TeachingPack{goodPack()},
		Profiles: testProfiles(),
		Graph:    testGraph(t),
		Truth:    testTruth(),
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if len(rec.Groups) != 1 {
		t.Fatalf("got %d group records, want 1", len(rec.Groups))
	}

	for _, s := range []Scores{rec.Groups[0].Scores, rec.Aggregate} {
		for name, v := range map[string]float64{
			"accuracy": s.Accuracy, "coverage": s.Coverage, "soundness": s.Soundness, "overall": s.Overall,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%s = %v, out of [0,1]", name, v)
			}
		}
		want := 0.4*s.Accuracy + 0.3*s.Coverage + 0.3*s.Soundness
		if math.Abs(s.Overall-want) > 1e-9 {
			t.Errorf("overall = %v, want exactly %v", s.Overall, want)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	in := Input{
		Packs:    []pack.TeachingPack{goodPack()},
		Profiles: testProfiles(),
		Graph:    testGraph(t),
		Truth:    testTruth(),
	}
	r1, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Aggregate != r2.Aggregate {
		t.Fatalf("aggregate differs across identical inputs: %+v vs %+v", r1.Aggregate, r2.Aggregate)
	}
}

func TestCoveragePenalizesOmission(t *testing.T) {
	// A pack that never mentions the ground truth at all.
	empty := pack.TeachingPack{
		GroupID: "group-1",
		Slides:  []pack.Slide{{Title: "Weather", Body: "Clouds and rain."}},
		Quiz:    []pack.QuizQuestion{{ID: "q1", SkillID: "basics", Text: "?", Options: []string{"a"}, CorrectAnswer: "a"}},
	}

	if c := coverage(&empty, testTruth()); c != 0 {
		t.Fatalf("coverage = %v for a pack omitting everything, want 0", c)
	}

	if c := coverage(&pack.TeachingPack{}, testTruth()); c != 0 {
		t.Fatalf("coverage = %v for an empty pack, want 0", c)
	}

	full := goodPack()
	if c := coverage(&full, testTruth()); c <= 0.5 {
		t.Fatalf("coverage = %v for a pack teaching everything, want > 0.5", c)
	}
}

func TestAccuracyContradictionScoresZero(t *testing.T) {
	wrong := pack.TeachingPack{
		GroupID: "group-1",
		Quiz: []pack.QuizQuestion{
			// References the ground-truth term but records the wrong answer.
			{ID: "q1", SkillID: "equivalence", Text: "Which equals 1/2? (equivalent fractions)", Options: []string{"1/3", "2/4"}, CorrectAnswer: "1/3"},
		},
	}

	if a := accuracy(&wrong, testTruth()); a != 0 {
		t.Fatalf("accuracy = %v for contradicting answer, want 0", a)
	}
}

func TestAnswersOnlyGroundTruthIsScored(t *testing.T) {
	// Only ExpectedAnswers supplied: the answer keys must act as
	// reference terms, not leave the metrics floored at zero.
	truth := GroundTruth{
		ExpectedAnswers: map[string]string{
			"equivalent fractions": "2/4",
		},
	}
	if truth.Empty() {
		t.Fatal("answers-only ground truth reported as empty")
	}

	p := pack.TeachingPack{
		GroupID: "group-1",
		Slides: []pack.Slide{
			{Title: "Equivalent Fractions", Body: "1/2 and 2/4 are equivalent fractions."},
		},
		Quiz: []pack.QuizQuestion{
			{ID: "q1", SkillID: "equivalence", Text: "Which equals 1/2? (equivalent fractions)", Options: []string{"2/4", "1/3"}, CorrectAnswer: "2/4"},
		},
	}

	if a := accuracy(&p, truth); a != 1.0 {
		t.Fatalf("accuracy = %v for a pack teaching the expected answer, want 1.0", a)
	}
	if c := coverage(&p, truth); c != 1.0 {
		t.Fatalf("coverage = %v for a pack covering every answer key, want 1.0", c)
	}

	rec, err := Evaluate(Input{
		Packs:    []pack.TeachingPack{p},
		Profiles: testProfiles(),
		Graph:    testGraph(t),
		Truth:    truth,
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if rec.Aggregate.Overall <= 0 {
		t.Fatalf("overall = %v for answers-only truth, want > 0", rec.Aggregate.Overall)
	}
}

func TestItemsDeduplicatesAnswerKeys(t *testing.T) {
	gt := GroundTruth{
		KeyConcepts: []string{"Equivalent Fractions"},
		ExpectedAnswers: map[string]string{
			"equivalent fractions": "2/4",
			"simplifying":          "1/2",
		},
	}
	got := gt.items()
	if len(got) != 2 {
		t.Fatalf("items() = %v, want 2 deduplicated terms", got)
	}
}

func TestEvaluateEmptyGroundTruth(t *testing.T) {
	_, err := Evaluate(Input{
		Packs: []pack.TeachingPack{goodPack()},
		Graph: testGraph(t),
		Truth: GroundTruth{},
	})
	if err == nil {
		t.Fatal("expected error for empty ground truth (evaluation must be skipped, not zeroed)")
	}
}

func TestProgressionOutOfOrder(t *testing.T) {
	p := pack.TeachingPack{
		Slides: []pack.Slide{
			{Title: "Equivalent Fractions", Body: "Advanced first."},
			{Title: "Fraction Basics", Body: "Basics last."},
		},
	}
	if got := progression(&p, testGraph(t)); got != 0 {
		t.Fatalf("progression = %v for reversed order, want 0", got)
	}

	ordered := pack.TeachingPack{
		Slides: []pack.Slide{
			{Title: "Fraction Basics", Body: ""},
			{Title: "Equivalent Fractions", Body: ""},
		},
	}
	if got := progression(&ordered, testGraph(t)); got != 1 {
		t.Fatalf("progression = %v for correct order, want 1", got)
	}
}
