package eval

import (
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Input bundles everything the engine scores over.
type Input struct {
	Packs    []pack.TeachingPack
	Profiles []grouping.GroupProfile
	Graph    *skillmap.Graph
	Truth    GroundTruth
}

// Evaluate scores every pack against the ground truth and aggregates.
// All scoring is deterministic: the same inputs always produce the same
// record. An empty ground truth is an error; callers skip evaluation
// instead of scoring zero.
func Evaluate(in Input) (Record, error) {
	if in.Truth.Empty() {
		return Record{}, fmt.Errorf("ground truth is empty, nothing to evaluate against")
	}
	if len(in.Packs) == 0 {
		return Record{}, fmt.Errorf("no packs to evaluate")
	}

	profiles := make(map[string]grouping.GroupProfile, len(in.Profiles))
	for _, p := range in.Profiles {
		profiles[p.GroupID] = p
	}

	var rec Record
	var sum Scores
	for i := range in.Packs {
		p := &in.Packs[i]
		s := Scores{
			Accuracy:  accuracy(p, in.Truth),
			Coverage:  coverage(p, in.Truth),
			Soundness: soundness(p, profiles[p.GroupID], in.Graph),
		}
		s.combine()

		rec.Groups = append(rec.Groups, GroupScores{GroupID: p.GroupID, Scores: s})
		sum.Accuracy += s.Accuracy
		sum.Coverage += s.Coverage
		sum.Soundness += s.Soundness
	}

	n := float64(len(rec.Groups))
	rec.Aggregate = Scores{
		Accuracy:  sum.Accuracy / n,
		Coverage:  sum.Coverage / n,
		Soundness: sum.Soundness / n,
	}
	rec.Aggregate.combine()

	return rec, nil
}

// accuracy scores each slide and quiz question 0, 0.5, or 1.0 against the
// ground truth and averages over all units.
func accuracy(p *pack.TeachingPack, gt GroundTruth) float64 {
	var sum float64
	units := 0

	for _, s := range p.Slides {
		sum += unitScore(s.Title+" "+s.Body, "", gt)
		units++
	}
	for _, q := range p.Quiz {
		sum += unitScore(q.Text+" "+q.SkillID+" "+q.Explanation, q.CorrectAnswer, gt)
		units++
	}

	if units == 0 {
		return 0
	}
	return sum / float64(units)
}

// unitScore rates one content unit: 1.0 when it teaches a ground-truth
// term with its expected answer, 0.5 when it references a term without a
// verifiable answer, 0 when it touches nothing in the ground truth.
func unitScore(text, answer string, gt GroundTruth) float64 {
	lower := strings.ToLower(text)

	matched := false
	for _, item := range gt.items() {
		term := strings.ToLower(item)
		if !strings.Contains(lower, term) {
			continue
		}
		matched = true

		expected, ok := gt.ExpectedAnswers[item]
		if !ok {
			continue
		}
		want := strings.ToLower(expected)
		if answer != "" {
			if strings.ToLower(answer) == want {
				return 1.0
			}
			// An answered unit contradicting the expected answer.
			return 0
		}
		if strings.Contains(lower, want) {
			return 1.0
		}
	}

	if matched {
		return 0.5
	}
	return 0
}

// coverage averages over ground-truth items, never over pack items, so
// anything the pack omits scores 0 and drags the metric down. An item is
// clearly taught (1.0) when it appears in a slide title or at least twice
// in the deck; mentioned but incomplete (0.5) when it appears once
// anywhere in the pack.
func coverage(p *pack.TeachingPack, gt GroundTruth) float64 {
	items := gt.items()
	if len(items) == 0 {
		return 0
	}

	var titles, deck, rest strings.Builder
	for _, s := range p.Slides {
		titles.WriteString(strings.ToLower(s.Title))
		titles.WriteString("\n")
		deck.WriteString(strings.ToLower(s.Title))
		deck.WriteString("\n")
		deck.WriteString(strings.ToLower(s.Body))
		deck.WriteString("\n")
	}
	for _, q := range p.Quiz {
		rest.WriteString(strings.ToLower(q.Text))
		rest.WriteString("\n")
	}
	for _, ex := range p.Practice {
		rest.WriteString(strings.ToLower(ex.Title))
		rest.WriteString("\n")
		rest.WriteString(strings.ToLower(ex.Instructions))
		rest.WriteString("\n")
	}
	if p.Video != nil {
		rest.WriteString(strings.ToLower(p.Video.Narration))
		rest.WriteString("\n")
	}

	var sum float64
	for _, item := range items {
		term := strings.ToLower(item)
		switch {
		case strings.Contains(titles.String(), term) || strings.Count(deck.String(), term) >= 2:
			sum += 1.0
		case strings.Contains(deck.String(), term) || strings.Contains(rest.String(), term):
			sum += 0.5
		}
	}
	return sum / float64(len(items))
}

// soundness averages four sub-criteria, each in [0,1]: grade-level fit,
// logical progression, quiz-content alignment, and cognitive load.
func soundness(p *pack.TeachingPack, profile grouping.GroupProfile, g *skillmap.Graph) float64 {
	return (gradeFit(p, profile) +
		progression(p, g) +
		quizAlignment(p, g) +
		cognitiveLoad(p)) / 4
}

// gradeFit is the fraction of slides whose body stays within the word
// budget for the group's mastery level.
func gradeFit(p *pack.TeachingPack, profile grouping.GroupProfile) float64 {
	if len(p.Slides) == 0 {
		return 0
	}

	limit := 120
	switch profile.MasteryLevel {
	case grouping.LevelLow:
		limit = 60
	case grouping.LevelMedium:
		limit = 90
	}

	ok := 0
	for _, s := range p.Slides {
		if len(strings.Fields(s.Body)) <= limit {
			ok++
		}
	}
	return float64(ok) / float64(len(p.Slides))
}

// progression checks that slides teach skills in prerequisite order: for
// each consecutive pair of skill-bearing slides, the topological index
// must not decrease.
func progression(p *pack.TeachingPack, g *skillmap.Graph) float64 {
	if g == nil {
		return 1.0
	}

	var indexes []int
	for _, s := range p.Slides {
		text := strings.ToLower(s.Title + " " + s.Body)
		best := -1
		for _, sk := range g.TopologicalOrder() {
			if strings.Contains(text, strings.ToLower(sk.Name)) || strings.Contains(text, strings.ToLower(sk.ID)) {
				best = g.TopoIndex(sk.ID)
				break
			}
		}
		if best >= 0 {
			indexes = append(indexes, best)
		}
	}

	if len(indexes) < 2 {
		return 1.0
	}
	ordered := 0
	for i := 1; i < len(indexes); i++ {
		if indexes[i] >= indexes[i-1] {
			ordered++
		}
	}
	return float64(ordered) / float64(len(indexes)-1)
}

// quizAlignment is the fraction of quizzed skills the slides teach.
func quizAlignment(p *pack.TeachingPack, g *skillmap.Graph) float64 {
	if len(p.Quiz) == 0 {
		return 0
	}

	var deck strings.Builder
	for _, s := range p.Slides {
		deck.WriteString(strings.ToLower(s.Title))
		deck.WriteString("\n")
		deck.WriteString(strings.ToLower(s.Body))
		deck.WriteString("\n")
	}
	taught := deck.String()

	skills := make(map[string]bool)
	aligned := 0
	for _, q := range p.Quiz {
		if skills[q.SkillID] {
			continue
		}
		skills[q.SkillID] = true

		found := strings.Contains(taught, strings.ToLower(q.SkillID))
		if !found && g != nil {
			if s, err := g.Skill(q.SkillID); err == nil {
				found = strings.Contains(taught, strings.ToLower(s.Name))
			}
		}
		if found {
			aligned++
		}
	}
	return float64(aligned) / float64(len(skills))
}

// cognitiveLoad checks the pack sizes sit in a teachable range: 4-12
// slides and 3-10 quiz questions.
func cognitiveLoad(p *pack.TeachingPack) float64 {
	score := 0.0
	if n := len(p.Slides); n >= 4 && n <= 12 {
		score += 0.5
	}
	if n := len(p.Quiz); n >= 3 && n <= 10 {
		score += 0.5
	}
	return score
}
