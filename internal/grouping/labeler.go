package grouping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/skillmap"
)

// LabelSchema defines the JSON schema for group labeling.
var LabelSchema = &llm.Schema{
	Name:        "group-label",
	Description: "Qualitative descriptors for one student group",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"learning_style": map[string]any{
				"type":        "string",
				"description": "Dominant learning style to target, e.g. \"visual\", \"hands-on\", \"verbal\", \"mixed\"",
			},
			"rationale": map[string]any{
				"type":        "string",
				"description": "2-3 sentence rationale for how to teach this group",
			},
		},
		"required":             []any{"learning_style", "rationale"},
		"additionalProperties": false,
	},
}

const labelSystemPrompt = `You are an experienced teacher describing how to approach a group of students with a shared mastery profile.`

// Labeler attaches qualitative descriptors to a group profile.
type Labeler struct {
	provider llm.Provider
	cfg      Config
}

// NewLabeler creates a group labeler.
func NewLabeler(provider llm.Provider, cfg Config) *Labeler {
	return &Labeler{provider: provider, cfg: cfg}
}

type labelOutput struct {
	LearningStyle string `json:"learning_style"`
	Rationale     string `json:"rationale"`
}

// Label fills in LearningStyle and Rationale for the profile. The ordinal
// mastery label is already derived from the numeric score and is never
// changed here, whatever the generated text suggests. On error the
// profile keeps its deterministic defaults and the caller decides whether
// to log or retry.
func (l *Labeler) Label(ctx context.Context, profile *GroupProfile, g *skillmap.Graph) error {
	ctx = llm.WithPurpose(ctx, "group-label")

	req := llm.Request{
		System:      labelSystemPrompt,
		Messages:    llm.UserTurn(buildLabelUserMessage(profile, g)),
		Schema:      LabelSchema,
		MaxTokens:   l.cfg.MaxTokens,
		Temperature: l.cfg.Temperature,
	}

	resp, err := l.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("group labeling: %w", err)
	}

	var out labelOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fmt.Errorf("parse group label response: %w", err)
	}

	if out.LearningStyle != "" {
		profile.LearningStyle = out.LearningStyle
	}
	if out.Rationale != "" {
		profile.Rationale = out.Rationale
	}
	return nil
}

func buildLabelUserMessage(p *GroupProfile, g *skillmap.Graph) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Group: %s\n", p.GroupID))
	b.WriteString(fmt.Sprintf("Students: %d\n", len(p.Members)))
	b.WriteString(fmt.Sprintf("Mastery level: %s (aggregate score %.2f)\n", p.MasteryLevel, p.AggregateScore))

	b.WriteString("\nWeak skills:\n")
	if len(p.WeakSkills) == 0 {
		b.WriteString("None\n")
	}
	for _, id := range p.WeakSkills {
		if s, err := g.Skill(id); err == nil {
			b.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, s.Description))
		} else {
			b.WriteString(fmt.Sprintf("- %s\n", id))
		}
	}

	b.WriteString(`
Instructions:
Describe how to teach this group:
1. Pick the learning style most likely to help given the mastery level and weak skills.
2. Write a 2-3 sentence rationale a teacher could act on. Be specific about the weak skills.`)

	return b.String()
}
