package drafter

import (
	"context"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Input is the shared contract for all drafters: the group's plan, the
// lesson's skill graph, the group profile for level targeting, and an
// optional prior pack whose asset is being revised.
type Input struct {
	Plan    *packplan.PackPlan
	Graph   *skillmap.Graph
	Profile grouping.GroupProfile
	Prior   *pack.TeachingPack
}

// Drafter generates one asset kind. Draft writes only its own field of
// the pack, so re-drafting a single kind leaves the others untouched.
type Drafter interface {
	Kind() Kind
	Draft(ctx context.Context, in Input, p *pack.TeachingPack) error
}

// Config holds content drafting settings shared by all drafters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible drafting defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   3072,
		Temperature: 0.6,
	}
}

// Registry is the dispatch table from asset kind to drafter.
type Registry map[Kind]Drafter

// NewRegistry builds the full drafter set against one provider.
func NewRegistry(provider llm.Provider, cfg Config) Registry {
	return Registry{
		KindSlides:   &SlidesDrafter{provider: provider, cfg: cfg},
		KindQuiz:     &QuizDrafter{provider: provider, cfg: cfg},
		KindPractice: &PracticeDrafter{provider: provider, cfg: cfg},
		KindVideo:    &VideoDrafter{provider: provider, cfg: cfg},
	}
}

// Draft dispatches to the drafter for the given kind.
func (r Registry) Draft(ctx context.Context, kind Kind, in Input, p *pack.TeachingPack) error {
	d, ok := r[kind]
	if !ok {
		return fmt.Errorf("no drafter registered for kind %q", kind)
	}
	return d.Draft(ctx, in, p)
}

// planContext renders the shared plan/profile/skill preamble used by
// every drafter's prompt.
func planContext(in Input) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Group: %s\n", in.Plan.GroupID))
	b.WriteString(fmt.Sprintf("Mastery level: %s\n", in.Profile.MasteryLevel))
	b.WriteString(fmt.Sprintf("Learning style: %s\n", in.Profile.LearningStyle))
	b.WriteString(fmt.Sprintf("Focus area: %s\n", in.Plan.FocusArea))
	b.WriteString(fmt.Sprintf("Strategy: %s\n", in.Plan.Strategy))

	b.WriteString("\nSkill gaps to address:\n")
	for _, id := range in.Plan.SkillGaps {
		if s, err := in.Graph.Skill(id); err == nil {
			b.WriteString(fmt.Sprintf("- %s (id: %s, difficulty %d): %s\n", s.Name, s.ID, s.Difficulty, s.Description))
		} else {
			b.WriteString(fmt.Sprintf("- %s\n", id))
		}
	}

	if len(in.Plan.Activities) > 0 {
		b.WriteString("\nPlanned activities:\n")
		for _, a := range in.Plan.Activities {
			b.WriteString(fmt.Sprintf("- %s\n", a))
		}
	}

	return b.String()
}

// allowedSkill reports whether a generated item may reference the given
// skill: it must come from the plan's gap list or the broader graph.
func allowedSkill(id string, in Input) bool {
	for _, gap := range in.Plan.SkillGaps {
		if gap == id {
			return true
		}
	}
	return in.Graph.Contains(id)
}
