package packplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/skillmap"
)

// PlanSchema defines the JSON schema for pack planning.
var PlanSchema = &llm.Schema{
	Name:        "pack-plan",
	Description: "Content plan for one student group's teaching pack",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"focus_area": map[string]any{
				"type":        "string",
				"description": "The main theme of the pack, naming at least one of the group's gap skills",
			},
			"strategy": map[string]any{
				"type":        "string",
				"description": "2-4 sentence instructional strategy for this group",
			},
			"skill_gaps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Skill IDs the pack must address, from the group's weak skills",
			},
			"activities": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-6 recommended activities",
			},
		},
		"required":             []any{"focus_area", "strategy", "skill_gaps", "activities"},
		"additionalProperties": false,
	},
}

const planSystemPrompt = `You are a curriculum planner. Given a student group's mastery profile, you design a focused content plan for that group's teaching pack.`

// Planner produces a PackPlan per group. Planning runs independently per
// group: a failed plan fails only that group's pack.
type Planner struct {
	provider llm.Provider
	cfg      Config
}

// NewPlanner creates a pack planner.
func NewPlanner(provider llm.Provider, cfg Config) *Planner {
	return &Planner{provider: provider, cfg: cfg}
}

type planOutput struct {
	FocusArea  string   `json:"focus_area"`
	Strategy   string   `json:"strategy"`
	SkillGaps  []string `json:"skill_gaps"`
	Activities []string `json:"activities"`
}

// Plan generates and contract-checks the plan for one group.
func (p *Planner) Plan(ctx context.Context, profile grouping.GroupProfile, g *skillmap.Graph) (*PackPlan, error) {
	ctx = llm.WithPurpose(ctx, "pack-plan")

	req := llm.Request{
		System:      planSystemPrompt,
		Messages:    llm.UserTurn(buildPlanUserMessage(profile, g)),
		Schema:      PlanSchema,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}

	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pack planning for %s: %w", profile.GroupID, err)
	}

	var out planOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse pack plan response: %w", err)
	}

	plan := &PackPlan{
		GroupID:    profile.GroupID,
		FocusArea:  out.FocusArea,
		Strategy:   out.Strategy,
		SkillGaps:  out.SkillGaps,
		Activities: out.Activities,
	}
	if len(plan.SkillGaps) == 0 {
		plan.SkillGaps = profile.WeakSkills
	}

	if err := checkPlan(plan, profile, g); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkPlan enforces the planning contract deterministically: a non-empty
// strategy and a focus area referencing at least one gap skill.
func checkPlan(plan *PackPlan, profile grouping.GroupProfile, g *skillmap.Graph) error {
	if strings.TrimSpace(plan.Strategy) == "" {
		return fmt.Errorf("plan for %s has empty strategy", plan.GroupID)
	}

	gaps := plan.SkillGaps
	if len(gaps) == 0 {
		gaps = profile.WeakSkills
	}
	if len(gaps) == 0 {
		// A group with no recorded gaps: any focus area is acceptable.
		return nil
	}

	focus := strings.ToLower(plan.FocusArea)
	for _, id := range gaps {
		if strings.Contains(focus, strings.ToLower(id)) {
			return nil
		}
		if s, err := g.Skill(id); err == nil {
			if strings.Contains(focus, strings.ToLower(s.Name)) {
				return nil
			}
		}
	}
	return fmt.Errorf("plan for %s: focus area %q references none of the gap skills %v",
		plan.GroupID, plan.FocusArea, gaps)
}

func buildPlanUserMessage(p grouping.GroupProfile, g *skillmap.Graph) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Group: %s\n", p.GroupID))
	b.WriteString(fmt.Sprintf("Students: %d\n", len(p.Members)))
	b.WriteString(fmt.Sprintf("Mastery level: %s\n", p.MasteryLevel))
	b.WriteString(fmt.Sprintf("Learning style: %s\n", p.LearningStyle))
	b.WriteString(fmt.Sprintf("Rationale: %s\n", p.Rationale))

	b.WriteString("\nWeak skills (the pack must close these gaps):\n")
	if len(p.WeakSkills) == 0 {
		b.WriteString("None recorded; reinforce the lesson's full skill set.\n")
	}
	for _, id := range p.WeakSkills {
		if s, err := g.Skill(id); err == nil {
			b.WriteString(fmt.Sprintf("- %s (id: %s, difficulty %d): %s\n", s.Name, s.ID, s.Difficulty, s.Description))
		} else {
			b.WriteString(fmt.Sprintf("- %s\n", id))
		}
	}

	b.WriteString("\nAll lesson skills:\n")
	for _, s := range g.TopologicalOrder() {
		b.WriteString(fmt.Sprintf("- %s (id: %s, difficulty %d)\n", s.Name, s.ID, s.Difficulty))
	}

	b.WriteString(`
Instructions:
Write the content plan:
1. focus_area must name at least one weak skill (by name or id).
2. strategy must describe, in 2-4 sentences, how the pack teaches this group given its mastery level and learning style.
3. skill_gaps must list the weak skill ids the pack addresses.
4. activities should list 3-6 concrete activities matched to the learning style.`)

	return b.String()
}
