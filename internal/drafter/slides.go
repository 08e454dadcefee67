package drafter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
)

// SlidesSchema defines the JSON schema for slide deck generation.
var SlidesSchema = &llm.Schema{
	Name:        "slide-deck",
	Description: "An ordered slide deck teaching a group's focus skills",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"slides": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Slide title",
						},
						"body": map[string]any{
							"type":        "string",
							"description": "Slide body text, plain text with newlines for bullets",
						},
					},
					"required":             []any{"title", "body"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"slides"},
		"additionalProperties": false,
	},
}

const slidesSystemPrompt = `You are writing a slide deck for one group of students. The deck teaches the group's focus skills at their mastery level, in a logical order from prerequisites to harder material.`

// SlidesDrafter generates the pack's slide deck.
type SlidesDrafter struct {
	provider llm.Provider
	cfg      Config
}

func (d *SlidesDrafter) Kind() Kind { return KindSlides }

func (d *SlidesDrafter) Draft(ctx context.Context, in Input, p *pack.TeachingPack) error {
	ctx = llm.WithPurpose(ctx, "draft-slides")

	var b strings.Builder
	b.WriteString(planContext(in))
	if in.Prior != nil && len(in.Prior.Slides) > 0 {
		b.WriteString("\nPrior draft to revise:\n")
		for _, s := range in.Prior.Slides {
			b.WriteString(fmt.Sprintf("## %s\n%s\n", s.Title, s.Body))
		}
	}
	b.WriteString(`
Instructions:
Write 6-10 slides:
1. Open with one overview slide naming what the group will learn.
2. Teach each skill gap explicitly. Name the skill in a slide title or body so students know what they are learning.
3. Order slides so prerequisite ideas come before the ideas that build on them.
4. Match depth to the group's mastery level. Keep each slide body under 80 words.`)

	req := llm.Request{
		System:      slidesSystemPrompt,
		Messages:    llm.UserTurn(b.String()),
		Schema:      SlidesSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	}

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("slides draft for %s: %w", in.Plan.GroupID, err)
	}

	var out struct {
		Slides []pack.Slide `json:"slides"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fmt.Errorf("parse slides response: %w", err)
	}
	if len(out.Slides) == 0 {
		return fmt.Errorf("slides draft for %s returned no slides", in.Plan.GroupID)
	}

	p.Slides = out.Slides
	return nil
}
