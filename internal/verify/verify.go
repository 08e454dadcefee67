package verify

import (
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/drafter"
	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Config holds verification settings.
type Config struct {
	// BandWidth is how many difficulty levels above the group's mastery
	// band a skill may sit before the curriculum check fails.
	BandWidth int
}

// DefaultConfig returns the default verification settings.
func DefaultConfig() Config {
	return Config{BandWidth: 3}
}

// Verify runs the deterministic structural and consistency checks over a
// completed pack. No generative calls are made; the result annotates the
// pack and never blocks it.
func Verify(p *pack.TeachingPack, profile grouping.GroupProfile, plan *packplan.PackPlan, g *skillmap.Graph, cfg Config) pack.Verification {
	v := pack.Verification{QuizValid: true, Alignment: true, Curriculum: true}

	checkQuiz(&v, p, profile, plan, g)
	checkAlignment(&v, p, g)
	checkCurriculum(&v, p, profile, g, cfg)

	return v
}

// checkQuiz re-runs the quiz structural rules on every question.
func checkQuiz(v *pack.Verification, p *pack.TeachingPack, profile grouping.GroupProfile, plan *packplan.PackPlan, g *skillmap.Graph) {
	if len(p.Quiz) == 0 {
		v.QuizValid = false
		v.Notes = append(v.Notes, "quiz: no questions")
		return
	}

	in := drafter.Input{Plan: plan, Graph: g, Profile: profile}
	for _, q := range p.Quiz {
		if err := drafter.CheckQuestion(q, in); err != nil {
			v.QuizValid = false
			v.Notes = append(v.Notes, fmt.Sprintf("quiz: %v", err))
		}
	}
}

// checkAlignment verifies that every skill assessed in the quiz is also
// taught in the slides, by token matching on skill names and IDs.
func checkAlignment(v *pack.Verification, p *pack.TeachingPack, g *skillmap.Graph) {
	if len(p.Quiz) == 0 || len(p.Slides) == 0 {
		v.Alignment = false
		v.Notes = append(v.Notes, "alignment: missing quiz or slides")
		return
	}

	var deck strings.Builder
	for _, s := range p.Slides {
		deck.WriteString(strings.ToLower(s.Title))
		deck.WriteString("\n")
		deck.WriteString(strings.ToLower(s.Body))
		deck.WriteString("\n")
	}
	taught := deck.String()

	seen := make(map[string]bool)
	for _, q := range p.Quiz {
		if seen[q.SkillID] {
			continue
		}
		seen[q.SkillID] = true

		if skillMentioned(taught, q.SkillID, g) {
			continue
		}
		v.Alignment = false
		v.Notes = append(v.Notes, fmt.Sprintf("alignment: quiz assesses %q but slides never teach it", q.SkillID))
	}
}

func skillMentioned(text, skillID string, g *skillmap.Graph) bool {
	if strings.Contains(text, strings.ToLower(skillID)) {
		return true
	}
	if s, err := g.Skill(skillID); err == nil {
		if strings.Contains(text, strings.ToLower(s.Name)) {
			return true
		}
	}
	return false
}

// checkCurriculum verifies that assessed content stays within reach of
// the group's mastery band: no quiz or practice skill may sit BandWidth
// or more difficulty levels above the band ceiling.
func checkCurriculum(v *pack.Verification, p *pack.TeachingPack, profile grouping.GroupProfile, g *skillmap.Graph, cfg Config) {
	ceiling := bandCeiling(profile.MasteryLevel)

	check := func(kind, skillID string) {
		s, err := g.Skill(skillID)
		if err != nil {
			return
		}
		if s.Difficulty-ceiling >= cfg.BandWidth {
			v.Curriculum = false
			v.Notes = append(v.Notes, fmt.Sprintf(
				"curriculum: %s uses skill %q (difficulty %d) beyond the %s band ceiling %d",
				kind, skillID, s.Difficulty, profile.MasteryLevel, ceiling))
		}
	}

	for _, q := range p.Quiz {
		check("quiz", q.SkillID)
	}
	for _, ex := range p.Practice {
		check("practice", ex.SkillID)
	}
}

// bandCeiling maps a mastery level to the top of its difficulty band on
// the 1-10 scale.
func bandCeiling(level grouping.Level) int {
	switch level {
	case grouping.LevelLow:
		return 4
	case grouping.LevelMedium:
		return 7
	default:
		return skillmap.MaxDifficulty
	}
}
